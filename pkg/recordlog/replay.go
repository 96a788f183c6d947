package recordlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/junbin-yang/go-statechart/pkg/config"
	"github.com/junbin-yang/go-statechart/pkg/statemachine"
)

// Decode 读取 FileSink 写出的记录
func Decode(r io.Reader, format string) ([]*statemachine.Record, error) {
	var recs []*statemachine.Record

	switch format {
	case config.FormatYAML:
		dec := yaml.NewDecoder(r)
		for {
			rec := &statemachine.Record{}
			err := dec.Decode(rec)
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			if err != nil {
				return recs, fmt.Errorf("recordlog: decode yaml record %d: %w", len(recs), err)
			}
			recs = append(recs, rec)
		}

	case "", config.FormatJSON:
		dec := json.NewDecoder(r)
		for {
			rec := &statemachine.Record{}
			err := dec.Decode(rec)
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			if err != nil {
				return recs, fmt.Errorf("recordlog: decode json record %d: %w", len(recs), err)
			}
			recs = append(recs, rec)
		}
	}
	return nil, fmt.Errorf("recordlog: unknown format %q", format)
}

// Replay 按记录中出现的完整名称重建状态树
//
// root 为 nil 时根据第一条记录创建根状态。返回根状态和最后一条记录到达的状态。
func Replay(root *statemachine.Node, recs []*statemachine.Record) (*statemachine.Node, *statemachine.Node, error) {
	var last *statemachine.Node

	visit := func(name string) (*statemachine.Node, error) {
		if name == "" {
			return nil, nil
		}
		n, r, err := statemachine.ResolvePath(root, name)
		if err != nil {
			return nil, err
		}
		root = r
		return n, nil
	}

	for i, rec := range recs {
		cur, err := visit(rec.Current)
		if err != nil {
			return root, last, fmt.Errorf("recordlog: record %d: %w", i, err)
		}
		if cur != nil {
			last = cur
		}
		for _, tr := range rec.Transitions {
			if _, err := visit(tr.From); err != nil {
				return root, last, fmt.Errorf("recordlog: record %d: %w", i, err)
			}
			to, err := visit(tr.To)
			if err != nil {
				return root, last, fmt.Errorf("recordlog: record %d: %w", i, err)
			}
			// 失败的记录不改变当前状态
			if to != nil && !rec.Failed() {
				last = to
			}
		}
	}
	return root, last, nil
}
