package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/domain"
)

// videoExts 是固定的视频扩展名集合（小写，带点）。
var videoExts = map[string]struct{}{
	".avi": {},
	".mkv": {},
	".mov": {},
	".wmv": {},
	".mp4": {},
	".ts":  {},
}

// InvalidDirectoryError 表示扫描根目录不存在或不是目录。
type InvalidDirectoryError struct {
	Path string
	Err  error
}

func (e *InvalidDirectoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s 不是一个有效的目录：%v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s 不是一个有效的目录", e.Path)
}

func (e *InvalidDirectoryError) Unwrap() error { return e.Err }

func IsInvalidDirectory(err error) bool {
	var e *InvalidDirectoryError
	return errors.As(err, &e)
}

// ScanVideos 递归扫描 root 下的视频文件。
//
// 规则：
// - 扩展名大小写不敏感，只认 avi/mkv/mov/wmv/mp4/ts
// - skipDirNames 中的目录名（例如临时抽帧目录 ClipTemp）不下钻
// - 扫描阶段只做 stat，不读文件内容
// - 只有 root 本身不可读才返回错误；其下不可读的目录/文件记一条 warn 后跳过
//
// logger 可为 nil。
func ScanVideos(root string, skipDirNames []string, logger *zap.Logger) ([]domain.VideoFile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root = filepath.Clean(root)
	fi, err := os.Stat(root)
	if err != nil {
		return nil, &InvalidDirectoryError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, &InvalidDirectoryError{Path: root}
	}

	skip := make(map[string]struct{}, len(skipDirNames))
	for _, n := range skipDirNames {
		n = strings.TrimSpace(n)
		if n != "" {
			skip[n] = struct{}{}
		}
	}

	files := make([]domain.VideoFile, 0, 64)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("跳过无法读取的路径", zap.String("path", path), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !IsVideoExt(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("跳过无法读取的文件", zap.String("path", path), zap.Error(err))
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		files = append(files, domain.VideoFile{
			AbsPath: abs,
			RelPath: filepath.ToSlash(rel),
			Dir:     filepath.Dir(abs),
			Base:    strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:     ext,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// IsVideoExt 判断扩展名（带点，任意大小写）是否属于视频集合。
func IsVideoExt(ext string) bool {
	_, ok := videoExts[strings.ToLower(ext)]
	return ok
}

// VideoExts 返回排序后的扩展名列表（不带点），用于"共找到 0 个"时的提示。
func VideoExts() []string {
	out := make([]string, 0, len(videoExts))
	for e := range videoExts {
		out = append(out, strings.TrimPrefix(e, "."))
	}
	sort.Strings(out)
	return out
}
