package namespace

import (
	"fmt"
	"strings"
)

// ParseRedirect 解析 echo 参数：'<content>' > <path>
//
// content 取第一个与最后一个单引号之间的全部文本，可以包含空格、单引号和 '>'。
// 引号前只允许空白，闭合引号与 '>' 之间只允许空白，目标路径不能为空。
func ParseRedirect(raw string) (content, target string, err error) {
	first := strings.IndexByte(raw, '\'')
	last := strings.LastIndexByte(raw, '\'')
	if first < 0 || last == first {
		return "", "", fmt.Errorf("missing quoted content: %w", ErrSyntax)
	}
	if strings.TrimSpace(raw[:first]) != "" {
		return "", "", fmt.Errorf("unexpected text before content: %w", ErrSyntax)
	}
	rest := strings.TrimSpace(raw[last+1:])
	if !strings.HasPrefix(rest, ">") {
		return "", "", fmt.Errorf("missing '>' redirect: %w", ErrSyntax)
	}
	target = strings.TrimSpace(rest[1:])
	if target == "" {
		return "", "", fmt.Errorf("missing target path: %w", ErrSyntax)
	}
	if strings.ContainsAny(target, ">'") {
		return "", "", fmt.Errorf("unexpected token in target %q: %w", target, ErrSyntax)
	}
	return raw[first+1 : last], target, nil
}
