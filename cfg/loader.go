package cfg

import "fmt"

type Loader interface {
	Load() (*Config, error)
}

// NewLoader chọn loader theo tên: "viper" đọc cfg/yaml/mode.yaml, "mock" dùng cấu hình cố định
func NewLoader(name string) (Loader, error) {
	switch name {
	case "", "viper":
		l, err := NewViperLoader()
		if err != nil {
			return nil, err
		}
		return l, nil
	case "mock":
		l, err := NewMockLoader()
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("[ERROR][CONFIG] unsupported loader: %s", name)
	}
}
