package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/ingest"
)

// User-facing messages
const (
	msgNoFileInRequest  = "❌ No se encontró el archivo en la solicitud."
	msgNoFileSelected   = "❌ No se seleccionó ningún archivo."
	msgEmptyFile        = "❌ El archivo está vacío. Subí un archivo válido."
	msgMissingIdentity  = "❌ El archivo debe contener las columnas 'ZONA' y 'POZO'."
	msgUnsupportedFile  = "❌ Formato no soportado. Subí un archivo .xlsx o .csv."
	msgUploadOK         = "✅ Archivo cargado con éxito. A continuación se muestran los primeros datos:"
	msgNoZones          = "Debes seleccionar al menos una zona."
	msgDuplicateWell    = "Error: No puedes seleccionar el mismo pozo para más de un pulling."
	msgUnknownWell      = "Error: el pozo seleccionado no pertenece a las zonas elegidas."
	msgNegativeHours    = "Error: las horas no pueden ser negativas."
	msgRigsConfirmed    = "Selección de Pulling confirmada."
	msgNoCandidates     = "No hay pozos disponibles para asignar HS."
	msgHoursConfirmed   = "HS Disponibilidad confirmada."
	msgAssignCompleted  = "Proceso de asignación completado."
	msgSessionExpired   = "La sesión expiró. Volvé a cargar el archivo."
	msgImportNotEnabled = "❌ La importación desde Google Sheets no está configurada."
)

// step is a page of the workflow and the message shown when a later page
// is visited before it has been completed
type step struct {
	path    string
	message string
}

var steps = map[workflow.Stage]step{
	workflow.StageUploaded:        {"/", "Debes subir un archivo Excel primero."},
	workflow.StageZonesSelected:   {"/filter", "Debes filtrar las zonas primero."},
	workflow.StageRigsAssigned:    {"/select_pulling", "Debes seleccionar los pozos para pulling primero."},
	workflow.StageAvailabilitySet: {"/hs", "Debes confirmar la disponibilidad de HS antes de continuar."},
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, ingest.ErrMissingColumns):
		columns := strings.TrimPrefix(err.Error(), ingest.ErrMissingColumns.Error()+": ")
		return "❌ Faltan las siguientes columnas en el archivo: " + columns
	case errors.Is(err, ingest.ErrMissingIdentity):
		return msgMissingIdentity
	case errors.Is(err, ingest.ErrEmptyTable):
		return msgEmptyFile
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return msgUnsupportedFile
	default:
		return fmt.Sprintf("❌ Error al procesar el archivo: %v", err)
	}
}

func cleaningMessages(dropped, duplicates int) []string {
	var messages []string
	if dropped > 0 {
		messages = append(messages, fmt.Sprintf("Se descartaron %d filas con valores inválidos.", dropped))
	}
	if duplicates > 0 {
		messages = append(messages, fmt.Sprintf("Se ignoraron %d filas con pozos repetidos.", duplicates))
	}
	return messages
}

func selectedZonesMessage(zones []string) string {
	return "Zonas seleccionadas: " + strings.Join(zones, ", ")
}

func planErrorMessage(err error) string {
	return fmt.Sprintf("❌ No se pudo calcular la asignación: %v", err)
}
