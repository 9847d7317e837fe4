// Package diff builds and applies the text patches stored with note revisions.
// Package diff 生成并应用笔记版本中保存的文本补丁
package diff

import (
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrPatchFailed 补丁未能完整应用
var ErrPatchFailed = errors.New("diff: patch did not apply cleanly")

// ReversePatch returns a patch that turns curr back into prev.
// ReversePatch 返回把 curr 还原为 prev 的补丁文本
func ReversePatch(prev, curr string) string {
	dmp := diffmatchpatch.New()
	return dmp.PatchToText(dmp.PatchMake(curr, prev))
}

// Apply applies a patch produced by ReversePatch. An empty patch returns text unchanged.
// Apply 应用 ReversePatch 生成的补丁，空补丁原样返回
func Apply(text, patch string) (string, error) {
	if patch == "" {
		return text, nil
	}
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return "", errors.Wrap(err, "diff: parse patch")
	}
	out, applied := dmp.PatchApply(patches, text)
	for _, ok := range applied {
		if !ok {
			return out, ErrPatchFailed
		}
	}
	return out, nil
}

// Rewind walks back from the newest content through patches ordered newest first.
// Rewind 从最新内容出发，按从新到旧的顺序依次应用补丁
func Rewind(latest string, patches []string) (string, error) {
	text := latest
	for i, p := range patches {
		var err error
		if text, err = Apply(text, p); err != nil {
			return "", errors.Wrapf(err, "diff: rewind step %d", i)
		}
	}
	return text, nil
}
