package metrics

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

var assetTables = []string{"furniture", "vehicle", "office_equipment", "other"}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	for _, table := range append([]string{"stations"}, assetTables...) {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        metricPrefix + "table_rows",
				Help:        "Rows per catalog table",
				ConstLabels: prometheus.Labels{"table": table},
			},
			func() float64 {
				return queryCount(db, logger, query)
			},
		))
	}

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "unassigned_assets",
			Help: "Assets whose station is unset or no longer exists",
		},
		func() float64 {
			var total float64
			for _, table := range assetTables {
				total += queryCount(db, logger, fmt.Sprintf(
					"SELECT COUNT(*) FROM %s a LEFT JOIN stations s ON s.id = a.station_id WHERE s.id IS NULL", table))
			}
			return total
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
