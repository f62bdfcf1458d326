package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"Lecturas/Models"
)

// GetDashboard returns the global counters shown on the landing screen.
func GetDashboard(c *fiber.Ctx) error {
	var totalRutas, rutasAbiertas, totalLecturas, lecturasTomadas int64

	db := Models.DB

	// A "route" is one (ruta, ano, mes) group
	grupos := db.Model(&Models.Lectura{}).
		Select("ruta, ano_consumo, mes_consumo").
		Group("ruta, ano_consumo, mes_consumo")
	if err := db.Table("(?) AS grupos", grupos).Count(&totalRutas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve stats"})
	}

	abiertos := db.Model(&Models.Lectura{}).
		Select("ruta, ano_consumo, mes_consumo").
		Where("abierta = ?", true).
		Group("ruta, ano_consumo, mes_consumo")
	if err := db.Table("(?) AS grupos", abiertos).Count(&rutasAbiertas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve stats"})
	}
	if err := db.Model(&Models.Lectura{}).Count(&totalLecturas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve stats"})
	}
	if err := db.Model(&Models.Lectura{}).
		Where("lectura_actual IS NOT NULL").
		Count(&lecturasTomadas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve stats"})
	}

	// Readings attributed to the caller's operador, when the link exists
	var misLecturas int64
	if user, ok := c.Locals("user").(Models.User); ok {
		var operador Models.Operador
		if err := db.Where("user_id = ?", user.Id).First(&operador).Error; err == nil {
			db.Model(&Models.Lectura{}).Where("operador_id = ?", operador.ID).Count(&misLecturas)
		}
	}

	return c.JSON(fiber.Map{
		"total_rutas":         totalRutas,
		"rutas_abiertas":      rutasAbiertas,
		"total_lecturas":      totalLecturas,
		"lecturas_tomadas":    lecturasTomadas,
		"lecturas_pendientes": totalLecturas - lecturasTomadas,
		"mis_lecturas":        misLecturas,
	})
}
