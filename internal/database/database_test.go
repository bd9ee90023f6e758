package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/melodypapa/autosar-calltree-sub001/internal/logging"
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

func TestInsertAssignsQualifiedName(t *testing.T) {
	db := New(logging.NewNoop())
	rec, err := db.Insert(model.FunctionInfo{Name: "COM_InitCommunication", FilePath: "/src/communication.c", LineNumber: 10})
	require.NoError(t, err)
	require.Equal(t, "communication::COM_InitCommunication", rec.QualifiedName)
}

func TestInsertRejectsDuplicateInSameFile(t *testing.T) {
	db := New(logging.NewNoop())
	_, err := db.Insert(model.FunctionInfo{Name: "fn", FilePath: "/src/a.c", LineNumber: 5})
	require.NoError(t, err)

	_, err = db.Insert(model.FunctionInfo{Name: "fn", FilePath: "/src/a.c", LineNumber: 5})
	require.Error(t, err)
	var dupErr *ErrDuplicateInFile
	require.ErrorAs(t, err, &dupErr)
}

func TestInsertSuffixesQualifiedNameCollision(t *testing.T) {
	db := New(logging.NewNoop())
	rec1, err := db.Insert(model.FunctionInfo{Name: "fn", FilePath: "/src/a.c", LineNumber: 5})
	require.NoError(t, err)
	require.Equal(t, "a::fn", rec1.QualifiedName)

	rec2, err := db.Insert(model.FunctionInfo{Name: "fn", FilePath: "/src/a.c", LineNumber: 9})
	require.Error(t, err)
	var collErr *ErrQualifiedNameCollision
	require.ErrorAs(t, err, &collErr)
	require.Equal(t, "a::fn::9", rec2.QualifiedName)

	byQ1, ok := db.ByQualifiedName("a::fn")
	require.True(t, ok)
	require.Equal(t, 5, byQ1.LineNumber)
	byQ2, ok := db.ByQualifiedName("a::fn::9")
	require.True(t, ok)
	require.Equal(t, 9, byQ2.LineNumber)
}

func TestLookupSmartSelectionCrossModule(t *testing.T) {
	db := New(logging.NewNoop())

	_, err := db.Insert(model.FunctionInfo{
		Name: "COM_InitCommunication", FilePath: "/src/demo.c", LineNumber: 3,
	})
	require.NoError(t, err)
	_, err = db.Insert(model.FunctionInfo{
		Name:     "COM_InitCommunication",
		FilePath: "/src/communication.c",
		LineNumber: 12,
		Calls:    []model.FunctionCall{{Name: "Com_Init"}},
	})
	require.NoError(t, err)

	rec, ok := db.Lookup("COM_InitCommunication", "/src/demo.c")
	require.True(t, ok)
	require.Equal(t, "/src/communication.c", rec.FilePath)
}

func TestLookupSingleCandidateShortCircuits(t *testing.T) {
	db := New(logging.NewNoop())
	_, err := db.Insert(model.FunctionInfo{Name: "only", FilePath: "/src/a.c", LineNumber: 1})
	require.NoError(t, err)

	rec, ok := db.Lookup("only", "")
	require.True(t, ok)
	require.Equal(t, "/src/a.c", rec.FilePath)
}

func TestLookupUnknownNameFails(t *testing.T) {
	db := New(logging.NewNoop())
	_, ok := db.Lookup("nope", "")
	require.False(t, ok)
}

func TestLookupPrefersModuleAssignedRecordAtLevelFour(t *testing.T) {
	db := New(logging.NewNoop())
	_, err := db.Insert(model.FunctionInfo{
		Name: "Shared_Helper", FilePath: "/src/alpha.c", LineNumber: 1,
		Calls: []model.FunctionCall{{Name: "x"}},
	})
	require.NoError(t, err)
	rec2, err := db.Insert(model.FunctionInfo{
		Name: "Shared_Helper", FilePath: "/src/beta.c", LineNumber: 1,
		Calls: []model.FunctionCall{{Name: "y"}},
	})
	require.NoError(t, err)
	db.SetModule(rec2, "Beta")

	rec, ok := db.Lookup("Shared_Helper", "")
	require.True(t, ok)
	require.Equal(t, "/src/beta.c", rec.FilePath)
}

func TestSetModuleUpdatesModuleStats(t *testing.T) {
	db := New(logging.NewNoop())
	rec, err := db.Insert(model.FunctionInfo{Name: "fn", FilePath: "/src/a.c", LineNumber: 1})
	require.NoError(t, err)
	db.SetModule(rec, "Communication")

	snap := db.Snapshot()
	require.Equal(t, 1, snap.ModuleCounts["Communication"])
	require.True(t, rec.HasModule)
	require.Equal(t, "Communication", rec.SWModule)
}

func TestSearchIsCaseInsensitiveSubstringSortedByQualifiedName(t *testing.T) {
	db := New(logging.NewNoop())
	_, err := db.Insert(model.FunctionInfo{Name: "Com_Send", FilePath: "/src/z.c", LineNumber: 1})
	require.NoError(t, err)
	_, err = db.Insert(model.FunctionInfo{Name: "Com_Recv", FilePath: "/src/a.c", LineNumber: 1})
	require.NoError(t, err)

	results := db.Search("com_")
	require.Len(t, results, 2)
	require.Equal(t, "a::Com_Recv", results[0].QualifiedName)
	require.Equal(t, "z::Com_Send", results[1].QualifiedName)
}
