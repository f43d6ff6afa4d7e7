package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultPort = 8080

func Port() (int, error) {
	portStr, ok := os.LookupEnv("APP_PORT")
	if !ok {
		return defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid APP_PORT %q", portStr)
	}
	return port, nil
}

func Addr() (string, error) {
	port, err := Port()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(":%d", port), nil
}

/*
lookupSecret reads a value from the NAME env variable or, failing that, from
the file named by NAME_FILE, the way docker secrets are mounted.
*/
func lookupSecret(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if ok {
		return value, nil
	}

	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return "", fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read %s file: %w", name, err)
	}

	return strings.TrimSpace(string(data)), nil
}
