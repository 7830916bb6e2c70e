package mcpserver

// PositionGuide explains how date positions are described to the rename
// tools.
const PositionGuide = `# redate Position Guide

Every rename tool reads the date out of a fixed position in the file name.
Positions are given as ` + "`start:length`" + ` and count characters of the
name WITHOUT its extension, starting at 0.

## Fields

| Argument          | Required | Meaning                                       |
|-------------------|----------|-----------------------------------------------|
| year              | yes      | position of the year (usually 4 characters)   |
| month             | yes      | position of the month                         |
| day               | no       | position of the day; omit when names have none |
| textual_month     | no       | month is a 3-letter name such as Jan or jan   |
| expected_length   | yes      | files whose base name has a different length are skipped |
| prefix            | no       | text placed before the date                   |
| separator         | no       | text placed between year, month and day       |

## Example

For ` + "`stmt20240115.pdf`" + ` the base name is ` + "`stmt20240115`" + ` (12 characters):

- year ` + "`4:4`" + ` → 2024
- month ` + "`8:2`" + ` → 01
- day ` + "`10:2`" + ` → 15

With prefix ` + "`NEW_`" + ` and separator ` + "`-`" + ` the file becomes ` + "`NEW_2024-01-15.pdf`" + `.

## Rules

1. Always call ` + "`preview_filename`" + ` on one sample, then ` + "`plan_rename`" + `
   before ` + "`execute_rename`" + `.
2. Pass the plan's ` + "`checksum`" + ` to ` + "`execute_rename`" + `; it refuses to run
   when the folder changed since the plan.
3. Existing files are never overwritten. Clashing names get ` + "`_1`" + `, ` + "`_2`" + ` ...
4. ` + "`undo_last_batch`" + ` reverses the most recent batch. A partial undo keeps the
   batch on the stack unless ` + "`confirm_partial`" + ` is true.
`
