package Controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"Lecturas/Models"
)

// ReporteRuta streams an xlsx workbook with the readings of one route for
// the session period.
func ReporteRuta(c *fiber.Ctx) error {
	ruta := c.Params("ruta")
	ano, mes, ok := periodoActivo(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No hay periodo seleccionado"})
	}

	var lecturas []Models.Lectura
	err := Models.DB.
		Preload("Cliente").
		Preload("Novedades").
		Where("ano_consumo = ? AND mes_consumo = ? AND ruta = ?", ano, mes, ruta).
		Order("orden ASC").
		Find(&lecturas).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve lecturas"})
	}
	if len(lecturas) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "La ruta no tiene lecturas en el periodo"})
	}

	f := excelize.NewFile()
	sheetName := "Lecturas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build workbook"})
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Orden", "Suministro", "Cliente", "Domicilio", "Medidor",
		"Lectura Anterior", "Lectura Actual", "Consumo (kWh)",
		"Novedades", "Observaciones", "Fecha Registro",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, lectura := range lecturas {
		row := rowIndex + 2

		var lecturaActual, consumo interface{}
		if lectura.LecturaActual != nil {
			lecturaActual = *lectura.LecturaActual
		}
		if lectura.ConsumoKwh != nil {
			consumo = *lectura.ConsumoKwh
		}

		descripciones := make([]string, 0, len(lectura.Novedades))
		for _, novedad := range lectura.Novedades {
			descripciones = append(descripciones, novedad.Descripcion)
		}

		var fechaRegistro string
		if lectura.FechaHoraRegistro != nil {
			fechaRegistro = lectura.FechaHoraRegistro.Format("2006-01-02 15:04:05")
		}

		values := []interface{}{
			lectura.Orden,
			lectura.SuministroNumero,
			lectura.Cliente.Denominacion,
			lectura.Cliente.Domicilio,
			lectura.NumeroMedidor,
			lectura.LecturaAnterior,
			lecturaActual,
			consumo,
			strings.Join(descripciones, ", "),
			lectura.NovedadLibre,
			fechaRegistro,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write workbook"})
	}

	filename := fmt.Sprintf("lecturas_%s_%d_%02d_%s.xlsx", ruta, ano, mes, time.Now().Format("20060102"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Set("Content-Length", strconv.Itoa(buf.Len()))
	return c.Send(buf.Bytes())
}
