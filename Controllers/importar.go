package Controllers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"Lecturas/Models"
)

// Expected workbook columns, one meter per row after the header:
// suministro, denominacion, domicilio, area, ruta, orden,
// tipo_medidor, numero_medidor, lectura_anterior
const importarColumnas = 9

type filaError struct {
	Fila   int    `json:"fila"`
	Motivo string `json:"motivo"`
}

// ImportarLecturas bulk-loads the lecturas of one period from an uploaded
// workbook. Rows that fail to parse are skipped and recorded in the
// Importacion audit row.
func ImportarLecturas(c *fiber.Ctx) error {
	ano, err := strconv.Atoi(c.FormValue("ano"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ano"})
	}
	mes, err := strconv.Atoi(c.FormValue("mes"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mes"})
	}
	if err := validate.Struct(PeriodoRequest{Ano: ano, Mes: mes}); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": formatErrors(err)})
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing archivo"})
	}

	tmpPath := filepath.Join(os.TempDir(), fileHeader.Filename)
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store upload"})
	}
	defer os.Remove(tmpPath)

	f, err := excelize.OpenFile(tmpPath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workbook: " + err.Error()})
	}

	rows := f.GetRows("Sheet1")
	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Workbook has no rows"})
	}

	var errores []filaError
	var lecturas []Models.Lectura

	tx := Models.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction error"})
	}

	// Row 1 is the header
	for i, row := range rows[1:] {
		fila := i + 2
		if len(row) < importarColumnas {
			errores = append(errores, filaError{Fila: fila, Motivo: "fila incompleta"})
			continue
		}

		orden, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			errores = append(errores, filaError{Fila: fila, Motivo: "orden inválido"})
			continue
		}
		lecturaAnterior, err := strconv.Atoi(strings.TrimSpace(row[8]))
		if err != nil {
			errores = append(errores, filaError{Fila: fila, Motivo: "lectura anterior inválida"})
			continue
		}
		denominacion := strings.TrimSpace(row[1])
		if denominacion == "" {
			errores = append(errores, filaError{Fila: fila, Motivo: "cliente sin denominación"})
			continue
		}

		cliente := Models.Cliente{
			Denominacion: denominacion,
			Domicilio:    strings.TrimSpace(row[2]),
		}
		if err := tx.Where("denominacion = ?", denominacion).FirstOrCreate(&cliente).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve cliente"})
		}

		lecturas = append(lecturas, Models.Lectura{
			AnoConsumo:       ano,
			MesConsumo:       mes,
			ClienteID:        cliente.ID,
			SuministroNumero: strings.TrimSpace(row[0]),
			Area:             strings.TrimSpace(row[3]),
			Ruta:             strings.TrimSpace(row[4]),
			Orden:            orden,
			TipoMedidor:      strings.TrimSpace(row[6]),
			NumeroMedidor:    strings.TrimSpace(row[7]),
			LecturaAnterior:  lecturaAnterior,
			Abierta:          true,
		})
	}

	if len(lecturas) > 0 {
		if err := tx.Create(&lecturas).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lecturas"})
		}
	}

	erroresJSON, _ := json.Marshal(errores)
	importacion := Models.Importacion{
		Archivo:         fileHeader.Filename,
		AnoConsumo:      ano,
		MesConsumo:      mes,
		TotalFilas:      len(rows) - 1,
		FilasImportadas: len(lecturas),
		Errores:         datatypes.JSON(erroresJSON),
	}
	if err := tx.Create(&importacion).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record importacion"})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit transaction"})
	}

	return c.Status(fiber.StatusCreated).JSON(importacion)
}

// GetImportaciones lists past batch imports.
func GetImportaciones(c *fiber.Ctx) error {
	var importaciones []Models.Importacion
	if err := Models.DB.Order("created_at DESC").Find(&importaciones).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve importaciones"})
	}
	return c.JSON(importaciones)
}
