package migrations

// Status describes one embedded migration file and whether it has already
// been recorded in schema_migrations.
type Status struct {
	Filename string
	Applied  bool
}
