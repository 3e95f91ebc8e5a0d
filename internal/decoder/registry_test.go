package decoder

import (
	"context"
	"reflect"
	"testing"
)

type namedDecoder string

func (d namedDecoder) Name() string { return string(d) }

func (d namedDecoder) Open(ctx context.Context, path string) (Source, error) { return nil, nil }

func TestNewRegistry_GetCaseInsensitive(t *testing.T) {
	reg, err := NewRegistry(namedDecoder("ffmpeg"), namedDecoder("MPEG"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, ok := reg.Get(" FFmpeg "); !ok {
		t.Fatalf("应能按大小写不敏感查找 ffmpeg")
	}
	if _, ok := reg.Get("mpeg"); !ok {
		t.Fatalf("应能查找 mpeg")
	}
	if _, ok := reg.Get("vlc"); ok {
		t.Fatalf("不应找到未注册的 decoder")
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"ffmpeg", "mpeg"}) {
		t.Fatalf("Names 不符合预期：%v", got)
	}
}

func TestNewRegistry_Rejects(t *testing.T) {
	if _, err := NewRegistry(namedDecoder("a"), namedDecoder("A")); err == nil {
		t.Fatalf("重复名字应报错")
	}
	if _, err := NewRegistry(namedDecoder(" ")); err == nil {
		t.Fatalf("空名字应报错")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("nil decoder 应报错")
	}
}

func TestRegistry_ZeroValue(t *testing.T) {
	var reg Registry
	if _, ok := reg.Get("ffmpeg"); ok {
		t.Fatalf("零值注册表不应命中")
	}
}
