package main

import (
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/bartolsthoorn/transportlp/lp"
	"github.com/bartolsthoorn/transportlp/transport"
)

const envPrefix = "TRANSPORTLP_"

type config struct {
	input     string
	output    string
	backend   string
	timeout   time.Duration
	locale    string
	integer   bool
	skipDummy bool
	record    string
	verbose   bool
}

// env resolves settings from the process environment first and the .env
// file second.
type env struct {
	dotenv map[string]string
}

func loadEnv(path string) (*env, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &env{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return &env{dotenv: values}, nil
}

func (e *env) lookup(name string) (string, bool) {
	key := envPrefix + name
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if v, ok := e.dotenv[key]; ok && v != "" {
		return v, true
	}
	return "", false
}

func (e *env) get(name, def string) string {
	if v, ok := e.lookup(name); ok {
		return v
	}
	return def
}

func (e *env) getBool(name string, def bool) (bool, error) {
	v, ok := e.lookup(name)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.Errorf("%s%s: %q is not a boolean", envPrefix, name, v)
	}
	return b, nil
}

func (e *env) getDuration(name string, def time.Duration) (time.Duration, error) {
	v, ok := e.lookup(name)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, errors.Errorf("%s%s: %q is not a duration", envPrefix, name, v)
	}
	return d, nil
}

// defaults returns the flag defaults after applying the environment.
func (e *env) defaults() (config, error) {
	cfg := config{
		input:   e.get("INPUT", "input.txt"),
		output:  e.get("OUTPUT", "output.txt"),
		backend: e.get("BACKEND", lp.DefaultBackend),
		locale:  e.get("LOCALE", string(transport.Portuguese)),
		record:  e.get("RECORD", ""),
	}

	var err error
	if cfg.timeout, err = e.getDuration("TIMEOUT", 60*time.Second); err != nil {
		return cfg, err
	}
	if cfg.integer, err = e.getBool("INTEGER", false); err != nil {
		return cfg, err
	}
	if cfg.skipDummy, err = e.getBool("SKIP_DUMMY", false); err != nil {
		return cfg, err
	}
	if cfg.verbose, err = e.getBool("VERBOSE", false); err != nil {
		return cfg, err
	}
	return cfg, nil
}
