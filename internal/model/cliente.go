package model

import (
	"time"

	"github.com/google/uuid"
)

// TipoDocumento is the closed set of identity document types a Cliente may carry.
type TipoDocumento string

const (
	DocDNI  TipoDocumento = "DNI"  // documento nacional de identidad — 8 dígitos
	DocRUC  TipoDocumento = "RUC"  // registro único de contribuyentes — 11 dígitos
	DocCE   TipoDocumento = "CE"   // carnet de extranjería
	DocPAS  TipoDocumento = "PAS"  // pasaporte
	DocOtro TipoDocumento = "OTRO"
)

// Valido reports whether t is one of the known document types.
func (t TipoDocumento) Valido() bool {
	switch t {
	case DocDNI, DocRUC, DocCE, DocPAS, DocOtro:
		return true
	}
	return false
}

// ValidarDocumento checks the document number format for the given type.
// DNI requires exactly 8 numeric digits, RUC exactly 11; every other type is
// accepted unconditionally. Pure — call sites decide whether to block persistence.
func ValidarDocumento(tipo TipoDocumento, numero string) bool {
	switch tipo {
	case DocDNI:
		return esNumerico(numero) && len(numero) == 8
	case DocRUC:
		return esNumerico(numero) && len(numero) == 11
	default:
		return true
	}
}

func esNumerico(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cliente is a customer. Sales reference it by the natural key
// (tipo_documento, numero_documento), not by the surrogate UUID.
type Cliente struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TipoDocumento   TipoDocumento `gorm:"type:varchar(10);not null"`
	NumeroDocumento string        `gorm:"uniqueIndex;not null"`
	Nombre          string        `gorm:"not null"`
	Email           *string
	Telefono        *string
	Direccion       *string
	FechaNacimiento *time.Time
	Activo          bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Cliente) TableName() string { return "clientes" }
