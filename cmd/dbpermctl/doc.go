// Command dbpermctl runs and administers the dbperm permission service.
//
// dbperm resolves role permissions over a database/table/field hierarchy:
// an override on a node wins, otherwise the nearest overridden ancestor
// applies, otherwise the role default.
//
// # Quick Start
//
//	# Create the schema
//	DBPERM_DATABASE_URL=postgres://... dbpermctl db migrate
//
//	# Run the API server, applying and watching a policy file
//	dbpermctl server --watch
//
//	# Ask questions offline from a policy file
//	dbpermctl resolve Editor db1_users_email --policy policy.yml
//	dbpermctl matrix Editor --policy policy.yml --format markdown
//
// Settings come from /etc/dbperm/dbperm.yml (or DBPERM_CONFIG_PATH) and
// DBPERM_* environment variables; see `dbpermctl configuration show`.
package main
