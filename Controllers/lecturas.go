package Controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Lecturas/Models"
)

const lecturasPageSize = 20

type GuardarLecturaRequest struct {
	LecturaActual *int   `json:"lectura_actual" validate:"required"`
	UbiGPS        string `json:"ubi_gps"`
}

// GetLecturas lists the readings of one route for the session period,
// ordered by orden, with client/operator/novedad data preloaded.
func GetLecturas(c *fiber.Ctx) error {
	ruta := c.Params("ruta")
	ano, mes, ok := periodoActivo(c)
	if !ok || ruta == "" {
		return c.JSON(fiber.Map{
			"lecturas":     []Models.Lectura{},
			"total":        0,
			"ruta_abierta": false,
		})
	}

	query := Models.DB.Model(&Models.Lectura{}).
		Where("ano_consumo = ? AND mes_consumo = ? AND ruta = ?", ano, mes, ruta)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count lecturas"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	var lecturas []Models.Lectura
	err := Models.DB.
		Preload("Cliente").
		Preload("Operador.User").
		Preload("Novedades").
		Where("ano_consumo = ? AND mes_consumo = ? AND ruta = ?", ano, mes, ruta).
		Order("orden ASC").
		Offset((page - 1) * lecturasPageSize).
		Limit(lecturasPageSize).
		Find(&lecturas).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve lecturas"})
	}

	// Route state comes from the first record; a route with no records
	// reports closed.
	rutaAbierta := false
	if len(lecturas) > 0 {
		rutaAbierta = lecturas[0].Abierta
	}

	totalPages := int(total) / lecturasPageSize
	if int(total)%lecturasPageSize != 0 {
		totalPages++
	}

	return c.JSON(fiber.Map{
		"lecturas":     lecturas,
		"total":        total,
		"page":         page,
		"page_size":    lecturasPageSize,
		"total_pages":  totalPages,
		"ruta":         ruta,
		"periodo":      NombreMes(mes) + " " + strconv.Itoa(ano),
		"ruta_abierta": rutaAbierta,
	})
}

// GuardarLectura records a new reading value. The whole
// read-validate-write sequence runs in one transaction so the checks are
// evaluated against the row being written.
func GuardarLectura(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lectura ID"})
	}

	var req GuardarLecturaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": formatErrors(err)})
	}

	tx := Models.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction error"})
	}

	var lectura Models.Lectura
	if err := tx.First(&lectura, id).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lectura not found"})
	}

	if !lectura.Abierta {
		tx.Rollback()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": Models.ErrRutaCerrada.Error()})
	}

	if err := lectura.RegistrarLectura(*req.LecturaActual); err != nil {
		tx.Rollback()
		var menor *Models.LecturaMenorError
		if errors.Is(err, Models.ErrLecturaNoPositiva) || errors.As(err, &menor) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	now := time.Now()
	lectura.FechaHoraRegistro = &now
	if req.UbiGPS != "" {
		lectura.UbiGPS = req.UbiGPS
	}

	// Attach the caller's operador when the link exists; a login without
	// one still records the reading.
	if user, ok := c.Locals("user").(Models.User); ok {
		var operador Models.Operador
		if err := tx.Where("user_id = ?", user.Id).First(&operador).Error; err == nil {
			lectura.OperadorID = &operador.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve operador"})
		}
	}

	if err := tx.Save(&lectura).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save lectura"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	return c.JSON(fiber.Map{
		"message": "Lectura guardada correctamente",
		"lectura": lectura,
	})
}

// EliminarLectura clears a recorded value, reverting the meter to
// "not yet read". Novedades and the free-text note are untouched.
func EliminarLectura(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lectura ID"})
	}

	tx := Models.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction error"})
	}

	var lectura Models.Lectura
	if err := tx.First(&lectura, id).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lectura not found"})
	}

	if !lectura.Abierta {
		tx.Rollback()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": Models.ErrRutaCerrada.Error()})
	}

	lectura.BorrarLectura()
	if err := tx.Save(&lectura).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save lectura"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	return c.JSON(fiber.Map{"message": "Lectura eliminada correctamente"})
}
