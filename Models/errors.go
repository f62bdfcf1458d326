package Models

import (
	"errors"
	"fmt"
)

// Domain errors returned by the reading lifecycle. Handlers map these to
// HTTP statuses instead of matching on message strings.
var (
	ErrRutaCerrada         = errors.New("la ruta está cerrada y no admite modificaciones")
	ErrLecturaNoPositiva   = errors.New("la lectura debe ser mayor a 0")
	ErrNovedadVacia        = errors.New("debe seleccionar al menos una novedad o escribir una observación")
	ErrDescripcionInvalida = errors.New("la descripción debe tener al menos 3 caracteres")
)

// LecturaMenorError reports a reading below the stored previous reading.
type LecturaMenorError struct {
	Actual   int
	Anterior int
}

func (e *LecturaMenorError) Error() string {
	return fmt.Sprintf("la lectura actual (%d) no puede ser menor a la lectura anterior (%d)", e.Actual, e.Anterior)
}
