package config

// Reserved instance attribute names. The init wrapper stashes the
// construction record under these; user classes must not declare or
// assign them directly.
const (
	CapturedArgsAttr   = "_retype_ctor_args_"
	CapturedKwargsAttr = "_retype_ctor_kwargs_"
)

// Protocol attribute and class names
const (
	InitMethodName = "init"
	RootClassName  = "Object"
)

// Built-in value class names
const (
	NilClassName      = "Nil"
	BoolClassName     = "Bool"
	IntClassName      = "Int"
	FloatClassName    = "Float"
	StrClassName      = "Str"
	TupleClassName    = "Tuple"
	RecordClassName   = "Record"
	NativeClassName   = "Native"
	ClassClassName    = "Class"
	CallableClassName = "Callable"
)

// ScenarioFileExtensions are all recognized scenario file extensions
var ScenarioFileExtensions = []string{".yaml", ".yml"}

// CLI defaults
const (
	EnvPrefix          = "RETYPE"
	ConfigDirName      = ".retype"
	ConfigFileName     = "config"
	DefaultOutput      = "text"
	DefaultJournalFile = "retype.db"
	DefaultListenAddr  = ":9310"
)
