package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"Lecturas/Models"
)

// RutaResumen is one row of the route listing: per-route meter counts for
// the selected period.
type RutaResumen struct {
	Ruta           string `json:"ruta"`
	Area           string `json:"area"`
	Abierta        bool   `json:"abierta"`
	TotalMedidores int    `json:"total_medidores"`
	Leidos         int    `json:"leidos"`
	Faltantes      int    `json:"faltantes"`
	OperadorNombre string `json:"operador_nombre"`
}

type RutaRequest struct {
	Ruta string `json:"ruta" validate:"required"`
}

// GetRutas groups the period's lecturas by route with read/pending counts
// and a representative operator name.
func GetRutas(c *fiber.Ctx) error {
	ano, mes, ok := periodoActivo(c)
	if !ok {
		return c.JSON(fiber.Map{"rutas": []RutaResumen{}, "periodo": "No seleccionado"})
	}

	var rutas []RutaResumen
	err := Models.DB.Model(&Models.Lectura{}).
		Select("lecturas.ruta, lecturas.area, lecturas.abierta, "+
			"COUNT(*) AS total_medidores, "+
			"COUNT(lecturas.lectura_actual) AS leidos, "+
			"MAX(users.name) AS operador_nombre").
		Joins("LEFT JOIN operadores ON operadores.id = lecturas.operador_id").
		Joins("LEFT JOIN users ON users.id = operadores.user_id").
		Where("lecturas.ano_consumo = ? AND lecturas.mes_consumo = ?", ano, mes).
		Group("lecturas.ruta, lecturas.area, lecturas.abierta").
		Order("lecturas.ruta ASC").
		Scan(&rutas).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve rutas"})
	}

	for i := range rutas {
		rutas[i].Faltantes = rutas[i].TotalMedidores - rutas[i].Leidos
	}

	return c.JSON(fiber.Map{
		"rutas":   rutas,
		"periodo": NombreMes(mes) + " " + strconv.Itoa(ano),
		"ano":     ano,
		"mes":     mes,
	})
}

// setRutaAbierta bulk-flips the open flag of every lectura in
// (ruta, session period) with a single UPDATE. Zero matches is a no-op.
func setRutaAbierta(c *fiber.Ctx, abierta bool) error {
	var req RutaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": formatErrors(err)})
	}

	ano, mes, ok := periodoActivo(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No hay periodo seleccionado"})
	}

	result := Models.DB.Model(&Models.Lectura{}).
		Where("ruta = ? AND ano_consumo = ? AND mes_consumo = ?", req.Ruta, ano, mes).
		Update("abierta", abierta)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update ruta"})
	}

	action := "cerrada"
	if abierta {
		action = "abierta"
	}
	return c.JSON(fiber.Map{
		"message":   "Ruta " + req.Ruta + " " + action + " correctamente",
		"afectadas": result.RowsAffected,
	})
}

// CerrarRuta freezes a route for editing.
func CerrarRuta(c *fiber.Ctx) error {
	return setRutaAbierta(c, false)
}

// AbrirRuta reopens a closed route.
func AbrirRuta(c *fiber.Ctx) error {
	return setRutaAbierta(c, true)
}

// EnviarComercial marks a closed route's lecturas as handed to billing.
func EnviarComercial(c *fiber.Ctx) error {
	var req RutaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": formatErrors(err)})
	}

	ano, mes, ok := periodoActivo(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No hay periodo seleccionado"})
	}

	var abiertas int64
	if err := Models.DB.Model(&Models.Lectura{}).
		Where("ruta = ? AND ano_consumo = ? AND mes_consumo = ? AND abierta = ?", req.Ruta, ano, mes, true).
		Count(&abiertas).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check ruta"})
	}
	if abiertas > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "La ruta debe estar cerrada antes de enviarla a comercial"})
	}

	result := Models.DB.Model(&Models.Lectura{}).
		Where("ruta = ? AND ano_consumo = ? AND mes_consumo = ?", req.Ruta, ano, mes).
		Update("enviado_comercial", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update ruta"})
	}

	return c.JSON(fiber.Map{
		"message":   "Ruta " + req.Ruta + " enviada a comercial",
		"afectadas": result.RowsAffected,
	})
}
