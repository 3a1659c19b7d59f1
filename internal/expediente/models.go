package expediente

import (
	"time"
)

// Expediente is a case file. The owning technician never changes after
// creation; status moves through the workflow in status.go.
type Expediente struct {
	ID                int64      `json:"id" db:"id"`
	Codigo            string     `json:"codigo" db:"codigo"`
	Titulo            string     `json:"titulo" db:"titulo"`
	Descripcion       string     `json:"descripcion" db:"descripcion"`
	Estado            Estado     `json:"estado" db:"estado"`
	TecnicoID         int64      `json:"tecnico_id" db:"tecnico_id"`
	TecnicoUsername   string     `json:"tecnico_username" db:"tecnico_username"`
	AprobadorID       *int64     `json:"aprobador_id" db:"aprobador_id"`
	AprobadorUsername *string    `json:"aprobador_username" db:"aprobador_username"`
	Justificacion     *string    `json:"justificacion" db:"justificacion"`
	Activo            bool       `json:"activo" db:"activo"`
	FechaCreacion     time.Time  `json:"fecha_creacion" db:"fecha_creacion"`
	FechaEstado       *time.Time `json:"fecha_estado" db:"fecha_estado"`
}

// CrearInput is the payload for creating a case file.
type CrearInput struct {
	Codigo      string `json:"codigo"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
}

// ActualizarInput is the payload for updating content fields. Only the owning
// technician may apply it.
type ActualizarInput struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
}

// CambioEstado is the payload for a status transition.
type CambioEstado struct {
	Estado        Estado `json:"estado"`
	Justificacion string `json:"justificacion"`
}

// ListParams is the filter set passed to the listing stored procedure.
type ListParams struct {
	Page        int
	PageSize    int
	Q           string
	Codigo      string
	Estado      string
	TecnicoID   *int64
	FechaInicio *time.Time
	FechaFin    *time.Time
}
