package models

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

// 観戦メンバーシップの一意性はDBの複合ユニーク制約で担保する
func TestGameObserverMembershipIsUnique(t *testing.T) {
	s, err := schema.Parse(&GameObserver{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}

	for _, idx := range s.ParseIndexes() {
		if idx.Class != "UNIQUE" || len(idx.Fields) != 2 {
			continue
		}
		columns := map[string]bool{}
		for _, field := range idx.Fields {
			columns[field.DBName] = true
		}
		if columns["game_id"] && columns["user_id"] {
			return
		}
	}
	t.Fatal("game observers lack a unique index over (game_id, user_id)")
}
