package format

import "fmt"

// Status is a return code of the codec engine. Zero is success, positive
// values are errors and negative values are informational warnings.
//
// Status implements error so engines can return it directly; callers
// translate it through engine.Check.
type Status int

const (
	StatusOK Status = 0

	StatusFileOError        Status = 1
	StatusFileWError        Status = 2
	StatusFileRError        Status = 3
	StatusFITabFull         Status = 4
	StatusInvalidHandle     Status = 5
	StatusInvalidFile       Status = 6
	StatusNoMemory          Status = 7
	StatusOpenRDMode        Status = 8
	StatusOpenWRMode        Status = 9
	StatusInvalidVarName    Status = 10
	StatusDictEmpty         Status = 11
	StatusVarNotFound       Status = 12
	StatusDupVar            Status = 13
	StatusNumeExp           Status = 14
	StatusStrExp            Status = 15
	StatusShortStrExp       Status = 16
	StatusInvalidVarType    Status = 17
	StatusInvalidMissFor    Status = 18
	StatusInvalidCompSw     Status = 19
	StatusInvalidPrFor      Status = 20
	StatusInvalidWrFor      Status = 21
	StatusInvalidDate       Status = 22
	StatusInvalidTime       Status = 23
	StatusNoVariables       Status = 24
	StatusMixedTypes        Status = 25
	StatusDupValue          Status = 27
	StatusInvalidCaseWgt    Status = 28
	StatusIncompatibleDict  Status = 29
	StatusDictCommit        Status = 30
	StatusDictNotCommit     Status = 31
	StatusNoType2           Status = 33
	StatusNoType73          Status = 41
	StatusInvalidDateInfo   Status = 45
	StatusNoType999         Status = 46
	StatusExcStrValue       Status = 47
	StatusCannotFree        Status = 48
	StatusBufferShort       Status = 49
	StatusInvalidCase       Status = 50
	StatusInternalVLabs     Status = 51
	StatusIncompatAppend    Status = 52
	StatusInternalDA        Status = 53
	StatusFileBadTemp       Status = 54
	StatusDEWNoFirst        Status = 55
	StatusInvalidMeasureLvl Status = 56
	StatusInvalid7Subtype   Status = 57
	StatusInvalidVarHandle  Status = 58
	StatusInvalidEncoding   Status = 59
	StatusFilesOpen         Status = 60
	StatusInvalidMRSetDef   Status = 70
	StatusInvalidMRSetName  Status = 71
	StatusDupMRSetName      Status = 72
	StatusBadExtension      Status = 73
	StatusInvalidExtString  Status = 74
	StatusInvalidAttrName   Status = 75
	StatusInvalidAttrDef    Status = 76
	StatusInvalidMRSetIndex Status = 77
	StatusInvalidVarSetDef  Status = 78
	StatusInvalidRole       Status = 79
	StatusExcLen64          Status = -1
	StatusExcVarLabel       Status = -2
	StatusExcValLabel       Status = -4
	StatusFileEnd           Status = -5
	StatusNoVarSets         Status = -6
	StatusEmptyVarSets      Status = -7
	StatusNoLabels          Status = -8
	StatusNoLabel           Status = -9
	StatusNoCaseWgt         Status = -10
	StatusNoDateInfo        Status = -11
	StatusNoMultResp        Status = -12
	StatusEmptyMultResp     Status = -13
	StatusNoDEW             Status = -14
	StatusEmptyDEW          Status = -15
)

var statusMessages = map[Status]string{
	StatusOK:                "no error",
	StatusFileOError:        "error opening file",
	StatusFileWError:        "file write error",
	StatusFileRError:        "error reading file",
	StatusFITabFull:         "file table full (too many open data files)",
	StatusInvalidHandle:     "the file handle is not valid",
	StatusInvalidFile:       "the file is not a valid data file",
	StatusNoMemory:          "insufficient memory",
	StatusOpenRDMode:        "file is open for reading, not writing",
	StatusOpenWRMode:        "file is open for writing, not reading",
	StatusInvalidVarName:    "the variable name is not valid",
	StatusDictEmpty:         "no variables defined in the dictionary",
	StatusVarNotFound:       "a variable with the given name does not exist",
	StatusDupVar:            "there is already a variable with the same name",
	StatusNumeExp:           "at least one of the variables is not numeric",
	StatusStrExp:            "at least one of the variables is numeric",
	StatusShortStrExp:       "at least one of the variables is a long string",
	StatusInvalidVarType:    "invalid length code",
	StatusInvalidMissFor:    "invalid missing values specification",
	StatusInvalidCompSw:     "invalid compression switch",
	StatusInvalidPrFor:      "the print format is invalid or incompatible with the variable type",
	StatusInvalidWrFor:      "the write format is invalid or incompatible with the variable type",
	StatusInvalidDate:       "the date value is negative",
	StatusInvalidTime:       "invalid time",
	StatusNoVariables:       "number of variables is zero or negative",
	StatusMixedTypes:        "mixed variable types",
	StatusDupValue:          "the list of values contains duplicates",
	StatusInvalidCaseWgt:    "the case weight variable is invalid",
	StatusIncompatibleDict:  "no code page equivalent for the file encoding",
	StatusDictCommit:        "dictionary has already been committed",
	StatusDictNotCommit:     "dictionary has not been committed",
	StatusNoType2:           "not a valid data file (no variable records)",
	StatusNoType73:          "no release info record present",
	StatusInvalidDateInfo:   "the date variable information is invalid",
	StatusNoType999:         "not a valid data file (missing dictionary terminator)",
	StatusExcStrValue:       "a value is longer than the length of the variable",
	StatusCannotFree:        "cannot deallocate memory",
	StatusBufferShort:       "buffer is too short to hold the value",
	StatusInvalidCase:       "current case is not valid",
	StatusInternalVLabs:     "internal value label structures are invalid",
	StatusIncompatAppend:    "file created on an incompatible system",
	StatusInternalDA:        "internal data access error",
	StatusFileBadTemp:       "cannot open or write to temporary file",
	StatusDEWNoFirst:        "data entry info was never started",
	StatusInvalidMeasureLvl: "measurement level is out of range or incompatible with the variable type",
	StatusInvalid7Subtype:   "record subtype out of range",
	StatusInvalidVarHandle:  "invalid variable handle",
	StatusInvalidEncoding:   "the specified encoding is not valid",
	StatusFilesOpen:         "data files are open",
	StatusInvalidMRSetDef:   "existing multiple-response set definitions are invalid",
	StatusInvalidMRSetName:  "the multiple-response set name is invalid",
	StatusDupMRSetName:      "the multiple-response set name is a duplicate",
	StatusBadExtension:      "bad file extension",
	StatusInvalidExtString:  "invalid extended string",
	StatusInvalidAttrName:   "lexically invalid attribute name",
	StatusInvalidAttrDef:    "missing name, missing text or invalid subscript",
	StatusInvalidMRSetIndex: "the multiple-response set index is out of range",
	StatusInvalidVarSetDef:  "invalid variable set definition",
	StatusInvalidRole:       "invalid role value",
	StatusExcLen64:          "label length exceeds 64; truncated",
	StatusExcVarLabel:       "variable label too long; truncated",
	StatusExcValLabel:       "value label too long; truncated",
	StatusFileEnd:           "end of file reached; no more cases",
	StatusNoVarSets:         "no variable sets in the file",
	StatusEmptyVarSets:      "variable sets information is empty",
	StatusNoLabels:          "no labels defined",
	StatusNoLabel:           "no label for the given value",
	StatusNoCaseWgt:         "no case weight variable defined",
	StatusNoDateInfo:        "no date variable information in the file",
	StatusNoMultResp:        "no multiple-response definitions in the file",
	StatusEmptyMultResp:     "multiple-response definitions are empty",
	StatusNoDEW:             "file contains no data entry info",
	StatusEmptyDEW:          "zero bytes of data entry info",
}

// Error implements error.
func (s Status) Error() string {
	if msg, ok := statusMessages[s]; ok {
		return fmt.Sprintf("status %d: %s", int(s), msg)
	}

	return fmt.Sprintf("status %d: return code not recognized", int(s))
}

// IsWarning reports whether s is informational rather than a failure.
// The release-info warning is positive but treated as a warning.
func (s Status) IsWarning() bool {
	return s < StatusOK || s == StatusNoType73
}

// IsError reports whether s is a failure.
func (s Status) IsError() bool {
	return s != StatusOK && !s.IsWarning()
}
