package dto

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	TipoDocumento   string  `json:"tipo_documento"   validate:"required,oneof=DNI RUC CE PAS OTRO"`
	NumeroDocumento string  `json:"numero_documento" validate:"required,min=1,max=20"`
	Nombre          string  `json:"nombre"           validate:"required,min=2,max=150"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Telefono        *string `json:"telefono"`
	Direccion       *string `json:"direccion"`
	FechaNacimiento *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
}

// ActualizarClienteRequest cannot change the document pair — it is the natural
// key sales reference.
type ActualizarClienteRequest struct {
	Nombre          *string `json:"nombre"           validate:"omitempty,min=2,max=150"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Telefono        *string `json:"telefono"`
	Direccion       *string `json:"direccion"`
	FechaNacimiento *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	Activo          *bool   `json:"activo"`
}

type ClienteFilter struct {
	Buscar string `form:"buscar"` // matches documento o nombre
	Activo string `form:"activo"` // "false" | "all" | default: solo activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID              string  `json:"id"`
	TipoDocumento   string  `json:"tipo_documento"`
	NumeroDocumento string  `json:"numero_documento"`
	Nombre          string  `json:"nombre"`
	Email           *string `json:"email,omitempty"`
	Telefono        *string `json:"telefono,omitempty"`
	Direccion       *string `json:"direccion,omitempty"`
	FechaNacimiento *string `json:"fecha_nacimiento,omitempty"`
	Activo          bool    `json:"activo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
