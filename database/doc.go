// Package database wraps GORM with connection retry, pool settings,
// structured query logging and a lifecycle component.
//
// The driver is chosen by configuration:
//
//	database:
//	  driver: "postgres"   # sqlite | mysql | postgres
//	  dsn: "host=db user=clinic dbname=clinic sslmode=disable"
//	  auto_migrate: true
//
// auto_migrate lets GORM create tables on start. Deployments use the
// versioned SQL applied by the migration subpackage instead, and list
// endpoints page through the query subpackage.
//
// Use FromDatabase to turn GORM errors into AppErrors at the edge.
package database
