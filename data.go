package devtools

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// Data is a generic keyed configuration value, loaded from a JSON or
// YAML file. Tools consult it with the Get* accessors instead of
// threading individual options around.
type Data struct {
	value interface{}
}

func NewData() *Data {
	return &Data{}
}

func (data *Data) String() string {
	return Pretty(data.value)
}

func DataFromFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value map[string]interface{}
	ext := filepath.Ext(path)
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(raw, &value)
	} else {
		err = json.Unmarshal(raw, &value)
	}
	if err != nil {
		return nil, err
	}
	return &Data{value: value}, nil
}

func DataToFile(data *Data, path string) error {
	return os.WriteFile(path, []byte(data.String()), 0o660)
}

func (data *Data) Put(key string, value interface{}) {
	if data.value == nil {
		data.value = make(map[string]interface{})
	}
	if m := data.AsMap(); m != nil {
		m[key] = value
	}
}

func (data *Data) AsMap() map[string]interface{} {
	if data.value != nil {
		if m, ok := data.value.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func (data *Data) Get(keys ...string) interface{} {
	return data.get(keys)
}

func (data *Data) get(keys []string) interface{} {
	m := data.AsMap()
	for i, key := range keys {
		if m == nil {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		if i == len(keys)-1 {
			return v
		}
		m = AsMap(v)
	}
	return nil
}

func (data *Data) Has(keys ...string) bool {
	return data.get(keys) != nil
}

func (data *Data) GetString(keys ...string) string {
	return AsString(data.get(keys))
}

func (data *Data) GetBool(keys ...string) bool {
	return AsBool(data.get(keys))
}

func (data *Data) GetInt(keys ...string) int {
	return AsInt(data.get(keys))
}

func (data *Data) GetArray(keys ...string) []interface{} {
	return AsArray(data.get(keys))
}

func (data *Data) GetMap(keys ...string) map[string]interface{} {
	return AsMap(data.get(keys))
}
