package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentDB adds query spans to db. Query variables stay out of the spans
// unless withVariables is set.
func InstrumentDB(db *gorm.DB, dbSystem string, withVariables bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem)}
	if !withVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
