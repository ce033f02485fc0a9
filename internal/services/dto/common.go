package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID принимает идентификатор числом (7) или строкой ("7").
// Ноль означает "не передан" или "не положительный".
type FlexibleID uint

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a positive integer")
	}
	if n <= 0 {
		*id = 0
		return nil
	}
	*id = FlexibleID(n)
	return nil
}

func (id FlexibleID) Uint() uint {
	return uint(id)
}

// SkillList принимает список строк или одну строку, которая оборачивается в список.
// nil означает, что поле не передано.
type SkillList []string

func (l *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = SkillList{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("skills must be a list of strings")
	}
	if list == nil {
		list = []string{}
	}
	*l = SkillList(list)
	return nil
}

// ParseSkillsForm разбирает значения multipart-поля skills: либо повторяющиеся
// поля, либо одно поле с JSON-массивом.
func ParseSkillsForm(values []string) (SkillList, error) {
	if len(values) == 1 {
		v := strings.TrimSpace(values[0])
		if strings.HasPrefix(v, "[") {
			var list SkillList
			if err := list.UnmarshalJSON([]byte(v)); err != nil {
				return nil, err
			}
			if list == nil {
				list = SkillList{}
			}
			return list, nil
		}
	}
	out := make(SkillList, len(values))
	copy(out, values)
	return out, nil
}
