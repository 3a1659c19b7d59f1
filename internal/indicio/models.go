package indicio

import "time"

// Indicio is one evidence item attached to a case file. Peso, Color and
// Tamano are optional physical attributes.
type Indicio struct {
	ID            int64     `json:"id" db:"id"`
	ExpedienteID  int64     `json:"expediente_id" db:"expediente_id"`
	Descripcion   string    `json:"descripcion" db:"descripcion"`
	Peso          *float64  `json:"peso" db:"peso"`
	Color         *string   `json:"color" db:"color"`
	Tamano        *string   `json:"tamano" db:"tamano"`
	Activo        bool      `json:"activo" db:"activo"`
	FechaCreacion time.Time `json:"fecha_creacion" db:"fecha_creacion"`
}

// CrearInput is the creation payload.
type CrearInput struct {
	Descripcion string   `json:"descripcion"`
	Peso        *float64 `json:"peso"`
	Color       *string  `json:"color"`
	Tamano      *string  `json:"tamano"`
}

// ActualizarInput is the update payload; it replaces all content fields.
type ActualizarInput struct {
	Descripcion string   `json:"descripcion"`
	Peso        *float64 `json:"peso"`
	Color       *string  `json:"color"`
	Tamano      *string  `json:"tamano"`
}
