package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionStore keeps per-caller state, currently only the selected period.
var SessionStore = session.New()

var nombresMeses = []string{"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

type PeriodoRequest struct {
	Ano int `json:"ano" validate:"required,oneof=2024 2025 2026"`
	Mes int `json:"mes" validate:"required,min=1,max=12"`
}

// NombreMes returns the display name of a month, or "" when out of range.
func NombreMes(mes int) string {
	if mes < 1 || mes > 12 {
		return ""
	}
	return nombresMeses[mes]
}

// periodoActivo reads the selected period from the caller's session.
// Listing endpoints return empty results when none is selected.
func periodoActivo(c *fiber.Ctx) (int, int, bool) {
	sess, err := SessionStore.Get(c)
	if err != nil {
		return 0, 0, false
	}
	ano, okAno := sess.Get("periodo_ano").(int)
	mes, okMes := sess.Get("periodo_mes").(int)
	if !okAno || !okMes {
		return 0, 0, false
	}
	return ano, mes, true
}

// SeleccionarPeriodo stores the chosen consumption period in the session.
func SeleccionarPeriodo(c *fiber.Ctx) error {
	var req PeriodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": formatErrors(err)})
	}

	sess, err := SessionStore.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
	}
	sess.Set("periodo_ano", req.Ano)
	sess.Set("periodo_mes", req.Mes)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
	}

	return c.JSON(fiber.Map{
		"message": "Periodo seleccionado: " + NombreMes(req.Mes) + " " + strconv.Itoa(req.Ano),
		"ano":     req.Ano,
		"mes":     req.Mes,
	})
}

// GetPeriodo echoes the currently selected period, if any.
func GetPeriodo(c *fiber.Ctx) error {
	ano, mes, ok := periodoActivo(c)
	if !ok {
		return c.JSON(fiber.Map{"periodo": "No seleccionado"})
	}
	return c.JSON(fiber.Map{
		"periodo": NombreMes(mes) + " " + strconv.Itoa(ano),
		"ano":     ano,
		"mes":     mes,
	})
}
