package expediente

import (
	"strings"

	"expedientes/pkg/domerrors"
)

// Estado is the workflow state of a case file.
type Estado string

const (
	EstadoAbierto   Estado = "abierto"
	EstadoAprobado  Estado = "aprobado"
	EstadoRechazado Estado = "rechazado"
)

const maxJustificacion = 500

// IsValid reports whether e is a known state.
func (e Estado) IsValid() bool {
	switch e {
	case EstadoAbierto, EstadoAprobado, EstadoRechazado:
		return true
	}
	return false
}

// Terminal reports whether e admits no further transitions. There is no
// reopen operation: approved and rejected are final.
func (e Estado) Terminal() bool {
	return e == EstadoAprobado || e == EstadoRechazado
}

// ValidarTransicion guards the state machine: only abierto → aprobado and
// abierto → rechazado exist, and rejection demands a justification.
func ValidarTransicion(actual, destino Estado, justificacion string) error {
	if destino != EstadoAprobado && destino != EstadoRechazado {
		return domerrors.New(domerrors.CodeValidation, "estado inválido: debe ser aprobado o rechazado")
	}
	if actual.Terminal() {
		return domerrors.Newf(domerrors.CodeValidation, "el expediente ya está %s y no admite cambios de estado", actual)
	}
	if destino == EstadoRechazado {
		j := strings.TrimSpace(justificacion)
		if j == "" {
			return domerrors.New(domerrors.CodeValidation, "la justificación es obligatoria al rechazar un expediente")
		}
		if len(j) > maxJustificacion {
			return domerrors.Newf(domerrors.CodeValidation, "la justificación no puede exceder %d caracteres", maxJustificacion)
		}
	}
	return nil
}
