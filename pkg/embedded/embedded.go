// Package embedded 提供内置特效文件的统一访问接口
//
// 内置特效（data/effects/*.yaml）随二进制一起分发，
// ebiten 查看器与终端查看器共用同一份数据，因此 embed.FS 声明在本包内。
// 路径统一使用 "data/" 前缀，例如 "data/effects/fountain.yaml"。
package embedded

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed data
var dataFS embed.FS

// EffectsDir is the embedded directory holding effect files.
const EffectsDir = "data/effects"

// normalize 标准化路径分隔符为正斜杠并移除 "./" 前缀
func normalize(p string) (string, error) {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	if !strings.HasPrefix(p, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", p)
	}
	return p, nil
}

// Open 打开内置文件
// 路径必须以 "data/" 开头
func Open(name string) (fs.File, error) {
	p, err := normalize(name)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(p)
}

// ReadFile 读取内置文件内容
// 路径必须以 "data/" 开头
func ReadFile(name string) ([]byte, error) {
	p, err := normalize(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在于 embed.FS 中
func Exists(name string) bool {
	file, err := Open(name)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 在 embed.FS 中匹配文件
func Glob(pattern string) ([]string, error) {
	p, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, p)
}

// ListEffects returns the embedded effect file paths, sorted by name.
func ListEffects() ([]string, error) {
	matches, err := Glob(path.Join(EffectsDir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// EffectName 从特效路径提取名称："data/effects/fire.yaml" → "fire"
func EffectName(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}
