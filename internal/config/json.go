package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig mirrors [Config] with JSON tags and string-friendly
// durations, so that config files can spell timeouts as "30s".
type jsonConfig struct {
	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		Library string `json:"library_dir"`
	} `json:"storage,omitempty"`

	Drive struct {
		Backend        string   `json:"backend"`
		Address        string   `json:"address"`
		Token          string   `json:"token"`
		Folder         string   `json:"folder"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"drive,omitempty"`

	Sync struct {
		WorkerCount    int    `json:"worker_count"`
		ConflictPolicy string `json:"conflict_policy"`
		Retry          struct {
			MaxAttempts int      `json:"max_attempts"`
			BaseDelay   Duration `json:"base_delay"`
			MaxDelay    Duration `json:"max_delay"`
		} `json:"retry,omitempty"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		Storage: Storage{
			DB:      DB{DSN: jsonCfg.Storage.DB.DSN},
			Library: jsonCfg.Storage.Library,
		},
		Drive: Drive{
			Backend:        jsonCfg.Drive.Backend,
			Address:        jsonCfg.Drive.Address,
			Token:          jsonCfg.Drive.Token,
			Folder:         jsonCfg.Drive.Folder,
			RequestTimeout: time.Duration(jsonCfg.Drive.RequestTimeout),
		},
		Sync: Sync{
			WorkerCount:    jsonCfg.Sync.WorkerCount,
			ConflictPolicy: jsonCfg.Sync.ConflictPolicy,
			Retry: Retry{
				MaxAttempts: jsonCfg.Sync.Retry.MaxAttempts,
				BaseDelay:   time.Duration(jsonCfg.Sync.Retry.BaseDelay),
				MaxDelay:    time.Duration(jsonCfg.Sync.Retry.MaxDelay),
			},
		},
		Workers: Workers{SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval)},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
