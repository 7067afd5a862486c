package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	envToken = regexp.MustCompile(`\$[A-Za-z0-9_]+`)
	varToken = regexp.MustCompile(`\$\{[A-Za-z0-9_]+\}|\$[A-Za-z0-9_]+`)
)

// EnvError is returned by ResolveEnv when a referenced environment variable is not set.
type EnvError struct {
	Name string
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("couldn't find environment variable $%s", e.Name)
}

// ResolveEnv substitutes every $VAR token in s with the value of the
// environment variable VAR. Every token is checked before anything is
// substituted, so an unset variable yields an error and no partial result.
// Substituted values are not scanned again.
func ResolveEnv(s string) (string, error) {
	return resolve(s, os.LookupEnv)
}

func resolve(s string, lookup func(string) (string, bool)) (string, error) {
	values := map[string]string{}
	for _, tok := range envToken.FindAllString(s, -1) {
		name := tok[1:]
		if _, ok := values[name]; ok {
			continue
		}
		val, ok := lookup(name)
		if !ok {
			return "", &EnvError{Name: name}
		}
		values[name] = val
	}
	return envToken.ReplaceAllStringFunc(s, func(tok string) string {
		return values[tok[1:]]
	}), nil
}

// SubstituteVar replaces "$name" and "${name}" in s with value. Other
// tokens, including longer names sharing the prefix, are left untouched.
func SubstituteVar(s, name, value string) string {
	return varToken.ReplaceAllStringFunc(s, func(tok string) string {
		if strings.Trim(tok[1:], "{}") == name {
			return value
		}
		return tok
	})
}
