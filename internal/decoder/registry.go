package decoder

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 是 decoder 的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Decoder
}

func NewRegistry(decoders ...Decoder) (Registry, error) {
	byName := make(map[string]Decoder, len(decoders))
	for _, d := range decoders {
		if d == nil {
			return Registry{}, fmt.Errorf("decoder 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(d.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("decoder.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 decoder：%q", name)
		}
		byName[name] = d
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Decoder, bool) {
	if r.byName == nil {
		return nil, false
	}
	d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Names 返回已注册的名字（排序后），用于错误提示。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
