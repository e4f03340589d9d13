package infra

import (
	"time"

	"tiendaweb/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection pool and runs migrations.
func NewDatabase(databaseURL string, env string) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if env == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("base de datos conectada y migrada")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.Cliente{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
	); err != nil {
		return err
	}

	// Partial unique index: the SKU must be unique among ACTIVE products only,
	// so a deactivated product does not block re-registering its SKU.
	// AutoMigrate cannot express WHERE clauses; idempotent raw DDL.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_productos_sku_activo
		ON productos (sku) WHERE activo = true`).Error; err != nil {
		return err
	}

	// FK over the natural key: sales reference customers by document number so
	// the link survives surrogate-key churn. SET NULL keeps the sale (with its
	// denormalized snapshot) if the customer row is ever hard-deleted.
	return db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_ventas_cliente_documento') THEN
			ALTER TABLE ventas ADD CONSTRAINT fk_ventas_cliente_documento
				FOREIGN KEY (cliente_numero_documento)
				REFERENCES clientes (numero_documento)
				ON DELETE SET NULL;
		END IF;
	END $$`).Error
}
