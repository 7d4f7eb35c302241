package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-openapi/jsonpointer"

	"github.com/jorge-barreto/row/internal/rowerr"
)

// ExpandVars substitutes $VAR / ${VAR} in template using vars, falling
// back to the process environment.
func ExpandVars(template string, vars map[string]string) string {
	return os.Expand(template, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return os.Getenv(key)
	})
}

// ExpandCommand renders one command template for a single directory.
// Supported substitutions: {directory}, {workspace_path}, {} (the whole
// value as JSON), and {<JSON-pointer>} resolved against value.
func ExpandCommand(template, directory, workspacePath string, value any) (string, error) {
	return expandPointers(template, directory, workspacePath, value, "")
}

// ExpandCommandAll renders one command template for the {directories}
// form: directories is substituted as a single space-joined token list;
// per-directory pointer substitution is not meaningful here and any
// pointer reference other than {workspace_path} is an error the caller
// should have already rejected at workflow-validation time.
func ExpandCommandAll(template string, directories []string, workspacePath string) (string, error) {
	return expandPointers(template, "", workspacePath, nil, strings.Join(directories, " "))
}

func expandPointers(template, directory, workspacePath string, value any, directoriesJoined string) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			sb.WriteByte(template[i])
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			sb.WriteByte(template[i])
			i++
			continue
		}
		token := template[i+1 : i+end]
		i += end + 1

		switch token {
		case "directory":
			sb.WriteString(directory)
		case "directories":
			sb.WriteString(directoriesJoined)
		case "workspace_path":
			sb.WriteString(workspacePath)
		case "":
			data, err := json.Marshal(value)
			if err != nil {
				return "", fmt.Errorf("encoding value for %q: %w", directory, err)
			}
			sb.Write(data)
		default:
			resolved, err := resolvePointer(token, value)
			if err != nil {
				return "", &rowerr.ValueError{Directory: directory, Pointer: token, Cause: err}
			}
			sb.WriteString(resolved)
		}
	}
	return sb.String(), nil
}

func resolvePointer(pointer string, value any) (string, error) {
	ptr, err := jsonpointer.New(pointer)
	if err != nil {
		return "", err
	}
	resolved, _, err := ptr.Get(value)
	if err != nil {
		return "", fmt.Errorf("pointer not present")
	}
	switch v := resolved.(type) {
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
