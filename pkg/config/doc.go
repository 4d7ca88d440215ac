// Package config loads dbperm settings.
//
// Values are resolved in order: built-in defaults, then dbperm.yml under
// DBPERM_CONFIG_PATH (default /etc/dbperm), then DBPERM_* environment
// variables. Every attribute records which of these sources set it, which
// `dbpermctl configuration show` prints.
package config
