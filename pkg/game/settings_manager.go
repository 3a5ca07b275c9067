package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 查看器偏好设置（不包含任何粒子状态）
type ViewerSettings struct {
	LastEffect string  `yaml:"lastEffect"` // 上次查看的特效名称
	Paused     bool    `yaml:"paused"`     // 启动时是否暂停
	TimeScale  float64 `yaml:"timeScale"`  // 模拟速度倍率 0.1 ~ 4.0
	ShowHUD    bool    `yaml:"showHUD"`    // 是否显示信息面板
}

// 时间倍率范围
const (
	MinTimeScale = 0.1
	MaxTimeScale = 4.0
)

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		TimeScale: 1.0,
		ShowHUD:   true,
	}
}

// Validate 修正越界的字段，返回是否有字段被修改
func (s *ViewerSettings) Validate() bool {
	clamped := clampTimeScale(s.TimeScale)
	changed := clamped != s.TimeScale
	s.TimeScale = clamped
	return changed
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ViewerSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// OpenStorage opens the per-user data store for appName. Failures are
// logged and yield nil, which puts SettingsManager in degraded mode.
func OpenStorage(appName string) *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: storage unavailable: %v (settings will not persist)", err)
		return nil
	}
	return m
}

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 目前总是 nil，加载失败会记录日志并使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始反序列化，缺失字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.Validate() {
		log.Printf("[SettingsManager] Clamped out-of-range timeScale to %.2f", loaded.TimeScale)
	}

	sm.settings = loaded
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Persistent reports whether settings survive a restart.
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetLastEffect 记录当前特效
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetLastEffect(name string) {
	sm.settings.LastEffect = name
}

// SetPaused 设置暂停状态
func (sm *SettingsManager) SetPaused(paused bool) {
	sm.settings.Paused = paused
}

// SetTimeScale 设置模拟速度，限制在 [MinTimeScale, MaxTimeScale]
func (sm *SettingsManager) SetTimeScale(scale float64) {
	sm.settings.TimeScale = clampTimeScale(scale)
}

// SetShowHUD 设置信息面板开关
func (sm *SettingsManager) SetShowHUD(show bool) {
	sm.settings.ShowHUD = show
}

func clampTimeScale(scale float64) float64 {
	if !(scale >= MinTimeScale) { // 同时处理 NaN
		return MinTimeScale
	}
	if scale > MaxTimeScale {
		return MaxTimeScale
	}
	return scale
}
