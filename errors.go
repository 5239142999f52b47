package hdpic

// Stages of the pipeline, used in StageError
const (
	StageValidate = "validate"
	StageOpen     = "open"
	StageDecode   = "decode"
	StageRender   = "render"
	StageArchive  = "archive"
	StageCompress = "compress"
	StageCatalog  = "catalog"
)

// StageError is returned by Convert, it names the failing stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
