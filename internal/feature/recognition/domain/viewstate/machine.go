// Package viewstate は撮影から結果表示までの画面遷移を表す状態機械です。
package viewstate

import (
	"errors"
	"fmt"
	"sync"
)

// View は表示中の画面です。
type View string

const (
	Welcome  View = "welcome"
	Settings View = "settings"
	Camera   View = "camera"
	Loading  View = "loading"
	Result   View = "result"
)

var (
	// ErrBusy は認識処理中に次の撮影が要求されたことを表します。
	ErrBusy = errors.New("a recognition request is already in flight")
	// ErrInvalidTransition は現在の画面から許されない遷移です。
	ErrInvalidTransition = errors.New("invalid view transition")
)

// Machine は画面遷移を管理します。並行に呼び出しても安全です。
type Machine struct {
	mu      sync.Mutex
	view    View
	message string
}

// New はWelcome画面から始まるMachineを生成します。
func New() *Machine {
	return &Machine{view: Welcome}
}

// View は現在の画面を返します。
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Message はカメラ画面に表示する直近のエラーメッセージを返します。
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Start は開始操作です。バックエンドが使えればCamera、使えなければSettingsへ進みます。
func (m *Machine) Start(ready bool) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view == Loading {
		return m.view
	}
	m.message = ""
	if ready {
		m.view = Camera
	} else {
		m.view = Settings
	}
	return m.view
}

// OpenSettings は設定画面を開きます。
func (m *Machine) OpenSettings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view == Loading {
		return ErrBusy
	}
	m.view = Settings
	return nil
}

// BeginCapture は撮影した画像の認識を開始します。
func (m *Machine) BeginCapture() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.view {
	case Camera:
		m.view = Loading
		m.message = ""
		return nil
	case Loading:
		return ErrBusy
	default:
		return m.invalid("capture")
	}
}

// Succeed は認識成功を反映します。
func (m *Machine) Succeed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != Loading {
		return m.invalid("succeed")
	}
	m.view = Result
	return nil
}

// Fail は認識失敗を反映し、メッセージを添えてカメラ画面へ戻ります。
func (m *Machine) Fail(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != Loading {
		return m.invalid("fail")
	}
	m.view = Camera
	m.message = message
	return nil
}

// Retake は結果画面からカメラ画面へ戻ります。
func (m *Machine) Retake() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != Result {
		return m.invalid("retake")
	}
	m.view = Camera
	m.message = ""
	return nil
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, m.view)
}
