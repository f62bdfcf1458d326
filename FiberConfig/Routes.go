package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"Lecturas/Controllers"
	"Lecturas/Models"
	"Lecturas/middleware"
)

func SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth
	app.Post("/api/login", Controllers.Login)
	app.Post("/api/logout", Controllers.Logout)
	app.Get("/api/user", middleware.Verify(Models.PermissionOperador), Controllers.CurrentUser)

	// Operadores
	operadores := app.Group("/api/operadores", middleware.Verify(Models.PermissionSupervisor))
	operadores.Get("/", Controllers.GetOperadores)
	operadores.Post("/", middleware.Verify(Models.PermissionAdmin), Controllers.CreateOperador)

	// Periodo de consumo (session state)
	periodo := app.Group("/api/periodo", middleware.Verify(Models.PermissionOperador))
	periodo.Get("/", Controllers.GetPeriodo)
	periodo.Post("/", Controllers.SeleccionarPeriodo)

	// Rutas
	rutas := app.Group("/api/rutas", middleware.Verify(Models.PermissionOperador))
	rutas.Get("/", Controllers.GetRutas)
	rutas.Get("/:ruta/lecturas", Controllers.GetLecturas)
	rutas.Post("/cerrar", middleware.Verify(Models.PermissionSupervisor), Controllers.CerrarRuta)
	rutas.Post("/abrir", middleware.Verify(Models.PermissionSupervisor), Controllers.AbrirRuta)
	rutas.Post("/enviar", middleware.Verify(Models.PermissionSupervisor), Controllers.EnviarComercial)
	rutas.Get("/:ruta/reporte", middleware.Verify(Models.PermissionSupervisor), Controllers.ReporteRuta)

	// Lecturas
	lecturas := app.Group("/api/lecturas", middleware.Verify(Models.PermissionOperador))
	lecturas.Post("/importar", middleware.Verify(Models.PermissionAdmin), Controllers.ImportarLecturas)
	lecturas.Get("/importaciones", middleware.Verify(Models.PermissionAdmin), Controllers.GetImportaciones)
	lecturas.Post("/:id", Controllers.GuardarLectura)
	lecturas.Delete("/:id/lectura", Controllers.EliminarLectura)
	lecturas.Put("/:id/novedades", Controllers.SetNovedades)

	// Tipos de novedades
	novedades := app.Group("/api/novedades", middleware.Verify(Models.PermissionOperador))
	novedades.Get("/", Controllers.GetNovedades)
	novedades.Post("/", middleware.Verify(Models.PermissionSupervisor), Controllers.CreateNovedad)
	novedades.Put("/:id", middleware.Verify(Models.PermissionSupervisor), Controllers.UpdateNovedad)
	novedades.Delete("/:id", middleware.Verify(Models.PermissionSupervisor), Controllers.DeleteNovedad)

	// Dashboard
	app.Get("/api/dashboard", middleware.Verify(Models.PermissionOperador), Controllers.GetDashboard)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
