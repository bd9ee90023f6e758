package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempC(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileAutosarExpansion(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE) Demo_Init(void)
{
    HW_InitHardware();
    SW_InitSoftware();
    COM_InitCommunication();
    Demo_InitVariables();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	require.Equal(t, "Demo_Init", fn.Name)
	require.Empty(t, fn.Parameters)
	require.Equal(t, "RTE_CODE", fn.MemoryClass)

	var names []string
	for _, c := range fn.Calls {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"HW_InitHardware", "SW_InitSoftware", "COM_InitCommunication", "Demo_InitVariables"}, names)
}

func TestParseFileConditionalCallGetsCondition(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE) Demo_MainFunction(void)
{
    if (0x05 > 0x00) {
        Demo_Update(0x05);
    }
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Calls, 1)

	call := fns[0].Calls[0]
	require.Equal(t, "Demo_Update", call.Name)
	require.True(t, call.IsConditional)
	require.Equal(t, "0x05 > 0x00", call.Condition)
	require.False(t, call.IsLoop)
}

func TestParseFileLoopCallGetsLoopCondition(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE) Demo_Loop(void)
{
    for (i = 0; i<10; i++) {
        Process_Element();
    }
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Calls, 1)

	call := fns[0].Calls[0]
	require.Equal(t, "Process_Element", call.Name)
	require.True(t, call.IsLoop)
	require.Equal(t, "i<10", call.LoopCondition)
}

func TestParseFileFuncP2VarAndP2Const(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC_P2VAR(uint8, AUTOMATIC, RTE_CODE) Demo_GetBuffer(void)
{
}

FUNC_P2CONST(uint8, AUTOMATIC, RTE_CODE) Demo_GetConstBuffer(void)
{
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 2)

	require.Equal(t, "uint8 *", fns[0].ReturnType)
	require.Equal(t, "const uint8 *", fns[1].ReturnType)
}

func TestParseFileParameterMacros(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE) Demo_WithParams(VAR(uint8, AUTOMATIC) a, P2VAR(uint8, AUTOMATIC, RTE_CODE) b, P2CONST(uint8, AUTOMATIC, RTE_CODE) c, CONST(uint8, AUTOMATIC) d)
{
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Parameters, 4)

	p := fns[0].Parameters
	require.Equal(t, "a", p[0].Name)
	require.False(t, p[0].IsPointer)
	require.False(t, p[0].IsConst)

	require.Equal(t, "b", p[1].Name)
	require.True(t, p[1].IsPointer)
	require.False(t, p[1].IsConst)

	require.Equal(t, "c", p[2].Name)
	require.True(t, p[2].IsPointer)
	require.True(t, p[2].IsConst)

	require.Equal(t, "d", p[3].Name)
	require.False(t, p[3].IsPointer)
	require.True(t, p[3].IsConst)
}

func TestParseFileTraditionalCDeclaration(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "util.c", `
static int helper(int x, const char *name)
{
    return do_work(x, name);
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	require.Equal(t, "helper", fn.Name)
	require.True(t, fn.IsStatic)
	require.Equal(t, "int", fn.ReturnType)
	require.Len(t, fn.Parameters, 2)
	require.Equal(t, "x", fn.Parameters[0].Name)
	require.Equal(t, "name", fn.Parameters[1].Name)
	require.True(t, fn.Parameters[1].IsConst)
	require.True(t, fn.Parameters[1].IsPointer)
	require.Len(t, fn.Calls, 1)
	require.Equal(t, "do_work", fn.Calls[0].Name)
}

func TestParseFileTraditionalCDeclarationWithTypeOnPrecedingLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "util.c", `
static void
my_func(void)
{
    helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	require.Equal(t, "my_func", fn.Name)
	require.True(t, fn.IsStatic)
	require.Equal(t, "void", fn.ReturnType)
	require.Equal(t, 2, fn.LineNumber)
	require.Len(t, fn.Calls, 1)
	require.Equal(t, "helper", fn.Calls[0].Name)
}

func TestParseFileRejectsKeywordAsFunctionName(t *testing.T) {
	dir := t.TempDir()
	// "if (x) {" looks like a header whose name is the keyword "if" and
	// must not be accepted; the "return helper();" line sits inside the
	// braces it opens, so this whole construct yields no function.
	path := writeTempC(t, dir, "util.c", `
if (x) {
    return helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Empty(t, fns)
}

func TestParseFileSkipsPreprocessorLine(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "util.c", `
#define FOO(x) bar(x)
static void real_fn(void)
{
    helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, "real_fn", fns[0].Name)
}

func TestParseFileCallFilterExcludesKeywordsAndPrimitives(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "util.c", `
static void real_fn(void)
{
    uint8 x = (uint8)(UINT32_C(5));
    if (x) {
        VAR(uint8, AUTOMATIC) y;
    }
    real_helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Calls, 1)
	require.Equal(t, "real_helper", fns[0].Calls[0].Name)
}

func TestParseFileHybridDedupPrefersAutosarOverTraditional(t *testing.T) {
	dir := t.TempDir()
	// A line that is itself valid as a plain-C-looking declaration but is
	// actually consumed as part of the AUTOSAR macro scan first; the
	// traditional scan must not also emit a second record for the same
	// (name, line).
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE) Demo_Init(void)
{
    Demo_Helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
}

func TestParseFileCommentsDoNotAffectLineNumbers(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", "/* header\ncomment */\nstatic void fn(void)\n{\n    // a line comment\n    helper();\n}\n")

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, 3, fns[0].LineNumber)
}

func TestParseFileMultiLineSignature(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
FUNC(void, RTE_CODE)
Demo_MultiLine(
    VAR(uint8, AUTOMATIC) a,
    VAR(uint8, AUTOMATIC) b
)
{
    helper();
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, "Demo_MultiLine", fns[0].Name)
	require.Len(t, fns[0].Parameters, 2)
}

func TestParseFileMissingClosingBraceYieldsEmptyBody(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
static void broken(void)
{
    helper();
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, "broken", fns[0].Name)
	require.Empty(t, fns[0].Calls)
}

func TestParseFileVoidParameterListIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeTempC(t, dir, "demo.c", `
static void fn(void)
{
}
`)

	fns, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Empty(t, fns[0].Parameters)
}

func TestParseFileNonexistentPathReturnsError(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.c"))
	require.Error(t, err)
}
