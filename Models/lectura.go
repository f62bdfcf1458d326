package Models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Cliente struct {
	gorm.Model
	Denominacion string `json:"denominacion" gorm:"not null"`
	Domicilio    string `json:"domicilio"`
}

func (Cliente) TableName() string {
	return "clientes"
}

// Novedad is a predefined anomaly category an operator can attach to a
// reading (meter inaccessible, broken seal, ...).
type Novedad struct {
	gorm.Model
	Descripcion string `json:"descripcion" gorm:"not null"`
}

func (Novedad) TableName() string {
	return "novedades"
}

// ValidarDescripcion normalizes and validates a novedad description:
// trimmed, non-empty and at least 3 characters.
func ValidarDescripcion(descripcion string) (string, error) {
	descripcion = strings.TrimSpace(descripcion)
	if len([]rune(descripcion)) < 3 {
		return "", ErrDescripcionInvalida
	}
	return descripcion, nil
}

// Lectura is the central record: one meter of one client, inside one
// (ano, mes, ruta) batch. Created in bulk by the importer, filled in by
// operators while the route is open.
type Lectura struct {
	gorm.Model

	// Periodo de consumo
	AnoConsumo int `json:"ano_consumo" gorm:"index:idx_lecturas_periodo;not null"`
	MesConsumo int `json:"mes_consumo" gorm:"index:idx_lecturas_periodo;not null"`

	// Cliente y suministro
	ClienteID        uint    `json:"cliente_id" gorm:"not null"`
	Cliente          Cliente `json:"cliente" gorm:"foreignKey:ClienteID;constraint:OnDelete:CASCADE"`
	SuministroNumero string  `json:"suministro_numero"`

	// Ruta
	Area  string `json:"area"`
	Ruta  string `json:"ruta" gorm:"index;not null"`
	Orden int    `json:"orden"`

	// Medidor
	TipoMedidor   string `json:"tipo_medidor"`
	NumeroMedidor string `json:"numero_medidor"`

	// Lecturas y consumo
	LecturaAnterior int  `json:"lectura_anterior" gorm:"not null"`
	LecturaActual   *int `json:"lectura_actual"`
	ConsumoKwh      *int `json:"consumo_kwh"`

	// Novedades
	Novedades    []Novedad `json:"novedades" gorm:"many2many:novedades_lectura;"`
	NovedadLibre string    `json:"novedad_libre"`

	// Estados
	// Deliberately no column default: the importer decides the initial
	// open state, and a zero value must stay false on create.
	EnviadoComercial bool `json:"enviado_comercial"`
	Abierta          bool `json:"abierta"`

	// Auditoría
	FechaHoraRegistro *time.Time `json:"fecha_hora_registro"`
	UbiGPS            string     `json:"ubi_gps"`
	OperadorID        *uint      `json:"operador_id"`
	Operador          *Operador  `json:"operador" gorm:"foreignKey:OperadorID;constraint:OnDelete:SET NULL"`
}

func (Lectura) TableName() string {
	return "lecturas"
}

// BeforeSave keeps the derived consumption consistent on every write.
func (l *Lectura) BeforeSave(tx *gorm.DB) error {
	l.CalcularConsumo()
	return nil
}

// CalcularConsumo derives consumption from the current/previous pair.
// Nil reading means "not yet read" and clears the consumption too.
func (l *Lectura) CalcularConsumo() {
	if l.LecturaActual == nil {
		l.ConsumoKwh = nil
		return
	}
	consumo := *l.LecturaActual - l.LecturaAnterior
	l.ConsumoKwh = &consumo
}

// RegistrarLectura validates and applies a new reading value. The route
// open check belongs to the caller, which holds the row in a transaction.
func (l *Lectura) RegistrarLectura(valor int) error {
	if valor <= 0 {
		return ErrLecturaNoPositiva
	}
	if valor < l.LecturaAnterior {
		return &LecturaMenorError{Actual: valor, Anterior: l.LecturaAnterior}
	}
	l.LecturaActual = &valor
	l.CalcularConsumo()
	return nil
}

// BorrarLectura reverts the record to "not yet read". Novedades and the
// free-text note are kept on purpose.
func (l *Lectura) BorrarLectura() {
	l.LecturaActual = nil
	l.ConsumoKwh = nil
}

// TieneLectura reports whether the meter was already read this period.
func (l *Lectura) TieneLectura() bool {
	return l.LecturaActual != nil
}

// NovedadLectura joins one Lectura with one Novedad. A given pair can
// appear at most once.
type NovedadLectura struct {
	LecturaID     uint      `json:"lectura_id" gorm:"primaryKey"`
	NovedadID     uint      `json:"novedad_id" gorm:"primaryKey"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

func (NovedadLectura) TableName() string {
	return "novedades_lectura"
}

// Importacion audits one batch load of lecturas from a workbook.
type Importacion struct {
	gorm.Model
	Archivo         string         `json:"archivo"`
	AnoConsumo      int            `json:"ano_consumo"`
	MesConsumo      int            `json:"mes_consumo"`
	TotalFilas      int            `json:"total_filas"`
	FilasImportadas int            `json:"filas_importadas"`
	Errores         datatypes.JSON `json:"errores"`
}

func (Importacion) TableName() string {
	return "importaciones"
}
