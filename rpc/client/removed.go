package client

// migrationGuide is referenced by every removal notice
const migrationGuide = "See migration guide: docs/migration/ingestion-removal.md"

// removedCommands maps commands the engine no longer supports to the notice
// returned instead of sending them. They were removed in v11.0.0 together
// with the engine side ingestion.
var removedCommands = map[string]string{
	"detect_data_types": "This command was removed in v11.0.0. " +
		"Alternative: Use extract_all or execute_script to get page content, " +
		"then perform pattern detection on the agent side. " + migrationGuide,
	"configure_ingestion": "This command was removed in v11.0.0. " +
		"Alternative: Manage ingestion configuration on the agent side. " + migrationGuide,
	"ingest_selected": "This command was removed in v11.0.0. " +
		"Alternative: Use extract_all to get content, detect patterns agent-side, " +
		"then manage ingestion in your application. " + migrationGuide,
	"ingest_all": "This command was removed in v11.0.0. " +
		"Alternative: Use extract_all to get content, detect patterns agent-side, " +
		"then manage ingestion in your application. " + migrationGuide,
}

// IsRemoved reports whether command has been removed and returns its notice
func IsRemoved(command string) (notice string, removed bool) {
	notice, removed = removedCommands[command]
	return notice, removed
}
