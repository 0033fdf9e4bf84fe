package application

// User-facing notification texts.
const (
	titleSuccess = "Éxito"
	titleError   = "Error"

	msgEventCreated     = "Evento creado correctamente"
	msgEventUpdated     = "Evento actualizado correctamente"
	msgEventDeleted     = "Evento eliminado correctamente"
	msgEventRescheduled = "Evento reprogramado correctamente"
	msgEventsImported   = "Eventos importados correctamente"

	msgCreateFailed          = "Error al crear el evento"
	msgUpdateFailed          = "Error al actualizar el evento"
	msgDeleteFailed          = "Error al eliminar el evento"
	msgRescheduleFailed      = "Error al reprogramar el evento"
	msgImportFailed          = "Error al importar los eventos"
	msgCitySuggestionsFailed = "Error al obtener las sugerencias de la ciudad"
	msgWeatherFailed         = "Error al obtener el clima"
	msgTimezoneFailed        = "Error al obtener la zona horaria"
)
