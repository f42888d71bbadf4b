package errors

import "encoding/json"

// JSONOutput represents the JSON structure for error output
type JSONOutput struct {
	Status   string         `json:"status"`
	Errors   []CompileError `json:"errors"`
	Warnings []CompileError `json:"warnings"`
	Summary  Summary        `json:"summary"`
}

// Summary contains error and warning counts
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	TotalCount   int `json:"total_count"`
}

// FormatErrorsAsJSON formats multiple errors as a JSON report, split into
// errors and warnings with an overall status.
func FormatErrorsAsJSON(errs []CompileError) (string, error) {
	var errorList []CompileError
	var warningList []CompileError

	for _, err := range errs {
		if err.IsError() {
			errorList = append(errorList, err)
		} else if err.IsWarning() {
			warningList = append(warningList, err)
		}
	}

	status := "success"
	if len(errorList) > 0 {
		status = "error"
	} else if len(warningList) > 0 {
		status = "warning"
	}

	output := JSONOutput{
		Status:   status,
		Errors:   errorList,
		Warnings: warningList,
		Summary: Summary{
			ErrorCount:   len(errorList),
			WarningCount: len(warningList),
			TotalCount:   len(errorList) + len(warningList),
		},
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
