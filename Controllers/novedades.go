package Controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"Lecturas/Models"
)

type NovedadRequest struct {
	Descripcion string `json:"descripcion" validate:"required"`
}

type SetNovedadesRequest struct {
	Novedades    []uint `json:"novedades"`
	NovedadLibre string `json:"novedad_libre"`
}

// GetNovedades lists the predefined issue types.
func GetNovedades(c *fiber.Ctx) error {
	var novedades []Models.Novedad
	if err := Models.DB.Order("descripcion ASC").Find(&novedades).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve novedades"})
	}
	return c.JSON(novedades)
}

// CreateNovedad creates a new issue type.
func CreateNovedad(c *fiber.Ctx) error {
	var req NovedadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	descripcion, err := Models.ValidarDescripcion(req.Descripcion)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	novedad := Models.Novedad{Descripcion: descripcion}
	if err := Models.DB.Create(&novedad).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create novedad"})
	}
	return c.Status(fiber.StatusCreated).JSON(novedad)
}

// UpdateNovedad edits an issue type's description.
func UpdateNovedad(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid novedad ID"})
	}

	var novedad Models.Novedad
	if err := Models.DB.First(&novedad, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Novedad not found"})
	}

	var req NovedadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	descripcion, err := Models.ValidarDescripcion(req.Descripcion)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	novedad.Descripcion = descripcion
	if err := Models.DB.Save(&novedad).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update novedad"})
	}
	return c.JSON(novedad)
}

// DeleteNovedad removes an issue type and every assignment referencing it.
// Free-text notes on the affected lecturas stay as they are.
func DeleteNovedad(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid novedad ID"})
	}

	var novedad Models.Novedad
	if err := Models.DB.First(&novedad, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Novedad not found"})
	}

	tx := Models.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction error"})
	}

	// Remove assignments first, then the type itself
	if err := tx.Where("novedad_id = ?", novedad.ID).Delete(&Models.NovedadLectura{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete assignments"})
	}
	if err := tx.Delete(&novedad).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete novedad"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	return c.JSON(fiber.Map{"message": "Novedad eliminada correctamente"})
}

// SetNovedades replaces a lectura's issue assignments with exactly the
// given set and updates its free-text note.
func SetNovedades(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lectura ID"})
	}

	var req SetNovedadesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	novedadLibre := strings.TrimSpace(req.NovedadLibre)
	ids := dedupe(req.Novedades)
	if len(ids) == 0 && novedadLibre == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": Models.ErrNovedadVacia.Error()})
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

	// Every referenced type must exist
	if len(ids) > 0 {
		var existentes int64
		if err := tx.Model(&Models.Novedad{}).Where("id IN ?", ids).Count(&existentes).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check novedades"})
		}
		if int(existentes) != len(ids) {
			tx.Rollback()
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Novedad not found"})
		}
	}

	// Replace semantics: clear previous assignments, insert the new set
	if err := tx.Where("lectura_id = ?", lectura.ID).Delete(&Models.NovedadLectura{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear novedades"})
	}
	now := time.Now()
	for _, novedadID := range ids {
		asignacion := Models.NovedadLectura{
			LecturaID:     lectura.ID,
			NovedadID:     novedadID,
			FechaRegistro: now,
		}
		if err := tx.Create(&asignacion).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign novedad"})
		}
	}

	lectura.NovedadLibre = novedadLibre
	if err := tx.Save(&lectura).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save lectura"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	return c.JSON(fiber.Map{"message": "Novedades guardadas correctamente"})
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

