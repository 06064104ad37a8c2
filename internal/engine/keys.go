package engine

// Phase identifiers for the fixed core pipeline.
const (
	PhaseAnalyze    = "analyze"
	PhaseDTO        = "dto"
	PhaseValidators = "validators"
	PhaseHandlers   = "handlers"
	PhaseSDK        = "sdk"
)

// Well-known context keys. Phases write them; later phases and plugins
// read them. Once written a key is immutable for the rest of the run.
const (
	// KeySchema holds the *schema.Schema under generation.
	KeySchema = "schema"

	// KeyAnalysis holds the map[string]*analyzer.EntityAnalysis.
	KeyAnalysis = "analysis"

	// KeyDTOFiles, KeyValidatorFiles, KeyHandlerFiles, and KeySDKFiles
	// hold map[string]string path→content outputs of the core phases.
	KeyDTOFiles       = "dto.files"
	KeyValidatorFiles = "validators.files"
	KeyHandlerFiles   = "handlers.files"
	KeySDKFiles       = "sdk.files"

	// KeyCoreRoutes holds the []plugin.Route the handler phase
	// registered for the core CRUD surface.
	KeyCoreRoutes = "handlers.routes"
)
