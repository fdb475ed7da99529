package keys

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/calc"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRules() []rules.Rule {
	return []rules.Rule{
		{SourceField: "公司代码", TargetField: "公司", DataType: rules.Text, IsPrimaryKey: true},
		{SourceField: "资产编号", DataType: rules.Text, IsPrimaryKey: true, CalcExpression: "前缀+流水号"},
	}
}

func TestBuildKey(t *testing.T) {
	b, err := NewBuilder(keyRules(), calc.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"公司代码", "资产编号"}, b.Fields())

	platform, err := b.BuildKey(table.Record{"公司代码": " 1000 ", "资产编号": "A01"}, false)
	require.NoError(t, err)
	assert.Equal(t, Key{"1000", "A01"}, platform)
	assert.Equal(t, "1000 + A01", platform.String())

	ref, err := b.BuildKey(table.Record{"公司": "1000", "前缀": "A", "流水号": "01"}, true)
	require.NoError(t, err)
	assert.Equal(t, platform.Encode(), ref.Encode())

	_, err = b.BuildKey(table.Record{"公司": "1000", "前缀": "A"}, true)
	assert.True(t, errors.Is(err, apperrors.ErrFieldNotFound))
}

func TestNewBuilder_NoKeys(t *testing.T) {
	_, err := NewBuilder(nil, calc.Options{})
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestKeyEncoding(t *testing.T) {
	k := Key{"a + b", "c"}
	assert.Equal(t, k, Decode(k.Encode()))
	assert.Equal(t, "a + b + c", Display(k.Encode()))
	assert.NotEqual(t, Key{"a", "b + c"}.Encode(), k.Encode())
	assert.True(t, Key{"a", ""}.Empty())
	assert.True(t, Key{}.Empty())
	assert.False(t, Key{"a"}.Empty())
}

func newTable(name string, ids ...any) *table.Table {
	t := table.New(name, "id")
	for _, id := range ids {
		t.Rows = append(t.Rows, table.Record{"id": id})
	}
	return t
}

func TestValidate(t *testing.T) {
	single := []rules.Rule{{SourceField: "id", TargetField: "id", IsPrimaryKey: true}}
	b, err := NewBuilder(single, calc.Options{})
	require.NoError(t, err)

	t.Run("Clean", func(t *testing.T) {
		tbl := newTable("platform", "A1", "A2")
		rep, err := Validate(tbl, b.Fields(), b.BuildAll(tbl))
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2"}, rep.Keys)
		assert.Equal(t, 1, rep.Index["A2"])
		assert.Nil(t, rep.Warning)
	})

	t.Run("Duplicates", func(t *testing.T) {
		tbl := newTable("platform", "A1", "A1", "B1")
		_, err := Validate(tbl, b.Fields(), b.BuildAll(tbl))
		var kie *apperrors.KeyIntegrityError
		require.ErrorAs(t, err, &kie)
		assert.Equal(t, 2, kie.Count)
		assert.Equal(t, []string{"A1"}, kie.Examples)
		assert.Contains(t, err.Error(), "id")
		assert.Contains(t, err.Error(), "platform")
	})

	t.Run("DuplicateExamplesCapped", func(t *testing.T) {
		var ids []any
		for i := 0; i < 8; i++ {
			ids = append(ids, fmt.Sprintf("K%d", i), fmt.Sprintf("K%d", i))
		}
		tbl := newTable("reference", ids...)
		_, err := Validate(tbl, b.Fields(), b.BuildAll(tbl))
		var kie *apperrors.KeyIntegrityError
		require.ErrorAs(t, err, &kie)
		assert.Equal(t, 16, kie.Count)
		assert.Len(t, kie.Examples, apperrors.MaxExamples)
	})

	t.Run("EmptyKeysWarnAndAreExcluded", func(t *testing.T) {
		tbl := newTable("reference", "A1", "", nil, " ")
		rep, err := Validate(tbl, b.Fields(), b.BuildAll(tbl))
		require.NoError(t, err)
		assert.Equal(t, []string{"A1"}, rep.Keys)
		assert.Equal(t, []int{1, 2, 3}, rep.EmptyRows)
		require.NotNil(t, rep.Warning)
		assert.Equal(t, 3, rep.Warning.Count)
		assert.Equal(t, 3, rep.Warning.PerField["id"])
	})

	t.Run("MissingColumn", func(t *testing.T) {
		tbl := table.New("reference", "code")
		_, err := Validate(tbl, b.Fields(), nil)
		var se *apperrors.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, []string{"id"}, se.Missing["reference"])
	})

	t.Run("NoFields", func(t *testing.T) {
		_, err := Validate(newTable("p"), nil, nil)
		assert.True(t, errors.Is(err, apperrors.ErrConfig))
	})
}

func TestResolve(t *testing.T) {
	p := Resolve([]string{"A3", "A1", "A2"}, []string{"A2", "B1", "A3"})
	assert.Equal(t, []string{"A1"}, p.OnlyInA)
	assert.Equal(t, []string{"B1"}, p.OnlyInB)
	assert.Equal(t, []string{"A2", "A3"}, p.Common)

	empty := Resolve([]string{"A1"}, nil)
	assert.Equal(t, []string{"A1"}, empty.OnlyInA)
	assert.Empty(t, empty.OnlyInB)
	assert.Empty(t, empty.Common)
}

// Every key of each input lands in exactly one of its two output sets.
func TestResolve_IsPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		var a, b []string
		for i := 0; i < rng.Intn(30); i++ {
			a = append(a, fmt.Sprintf("k%d", rng.Intn(40)))
		}
		for i := 0; i < rng.Intn(30); i++ {
			b = append(b, fmt.Sprintf("k%d", rng.Intn(40)))
		}
		p := Resolve(a, b)

		assert.ElementsMatch(t, unique(a), append(append([]string{}, p.OnlyInA...), p.Common...))
		assert.ElementsMatch(t, unique(b), append(append([]string{}, p.OnlyInB...), p.Common...))
		for _, k := range p.OnlyInA {
			assert.NotContains(t, p.OnlyInB, k)
			assert.NotContains(t, p.Common, k)
		}
		for _, k := range p.OnlyInB {
			assert.NotContains(t, p.Common, k)
		}
	}
}

func unique(in []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
