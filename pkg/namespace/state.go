package namespace

import "fmt"

// State 是会话的完整可序列化形式
type State struct {
	CurrentDirectory string           `json:"currentDirectory"`
	FileSystem       map[string]*Node `json:"fileSystem"`
}

// Snapshot 返回当前会话的深拷贝
func (s *Session) Snapshot() State {
	fsCopy := make(map[string]*Node, len(s.entries))
	for p, n := range s.entries {
		fsCopy[p] = n.Clone()
	}
	return State{
		CurrentDirectory: s.cwd,
		FileSystem:       fsCopy,
	}
}

// Restore 校验并用 state 替换会话内容，校验失败时会话保持不变
func (s *Session) Restore(state State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	entries := make(map[string]*Node, len(state.FileSystem))
	for p, n := range state.FileSystem {
		entries[p] = n.Clone()
	}
	s.entries = entries
	s.cwd = state.CurrentDirectory
	return nil
}

// Validate 检查根目录、键格式与当前目录
func (st State) Validate() error {
	if !st.FileSystem[Root].IsDir() {
		return fmt.Errorf("root %q missing or not a directory: %w", Root, ErrInvalidState)
	}
	for p, n := range st.FileSystem {
		if !IsCanonical(p) {
			return fmt.Errorf("non-canonical path %q: %w", p, ErrInvalidState)
		}
		if n == nil {
			return fmt.Errorf("nil node at %q: %w", p, ErrInvalidState)
		}
	}
	if !st.FileSystem[st.CurrentDirectory].IsDir() {
		return fmt.Errorf("current directory %q is not a directory: %w", st.CurrentDirectory, ErrInvalidState)
	}
	return nil
}
