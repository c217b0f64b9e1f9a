package duckvec_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/duckvec"
	"github.com/hupe1980/duckvec/codec"
	"github.com/hupe1980/duckvec/memengine"
	"github.com/hupe1980/duckvec/types"
)

// Example_parseType demonstrates resolving a SQL type spelling.
func Example_parseType() {
	lt, err := types.Parse("STRUCT(id BIGINT, tags VARCHAR[], scores MAP(VARCHAR, DOUBLE))")
	if err != nil {
		log.Fatal(err)
	}
	defer lt.Release()

	fmt.Println(lt)
	fmt.Println(len(lt.Fields()), lt.SlotWidth())
	// Output:
	// STRUCT(id BIGINT, tags VARCHAR[], scores MAP(VARCHAR, DOUBLE))
	// 3 0
}

// Example_appender demonstrates appending rows and reading them back.
func Example_appender() {
	eng := memengine.New()
	defer eng.Close()

	tbl, err := eng.CreateTable("users",
		memengine.Column{Name: "id", Type: "INTEGER"},
		memengine.Column{Name: "name", Type: "VARCHAR"},
	)
	if err != nil {
		log.Fatal(err)
	}

	app, err := duckvec.NewAppender(tbl.Destination())
	if err != nil {
		log.Fatal(err)
	}
	for i, name := range []string{"ada", "grace"} {
		row, _ := app.BeginRow()
		_ = row.Append(int32(i + 1))
		_ = row.Append(name)
		if err := row.EndRow(); err != nil {
			log.Fatal(err)
		}
	}
	// Ordinal inserts leave the remaining columns NULL.
	row, _ := app.BeginRow()
	_ = row.Insert(0, 3)
	_ = row.EndRow()

	if err := app.Close(); err != nil {
		log.Fatal(err)
	}

	rows, err := tbl.Rowset()
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range rows {
		fmt.Println(r...)
	}
	// Output:
	// 1 ada
	// 2 grace
	// 3 <nil>
}

// Example_bulkCopy demonstrates copying JSON lines by column name.
func Example_bulkCopy() {
	eng := memengine.New()
	defer eng.Close()

	tbl, err := eng.CreateTable("events",
		memengine.Column{Name: "id", Type: "BIGINT"},
		memengine.Column{Name: "kind", Type: "VARCHAR"},
	)
	if err != nil {
		log.Fatal(err)
	}

	input := `["kind", "id"]
["open", 1]
["close", 2]
`
	src, err := codec.NewLineSource(strings.NewReader(input), codec.GoJSON{})
	if err != nil {
		log.Fatal(err)
	}

	bc := duckvec.NewBulkCopy(tbl.Destination())
	_ = bc.ColumnMappings().Add(duckvec.MapNames("kind", "kind"))
	_ = bc.ColumnMappings().Add(duckvec.MapNames("id", "id"))

	copied, err := bc.WriteToServer(context.Background(), src)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("copied", copied)

	rows, _ := tbl.Rowset()
	for _, r := range rows {
		fmt.Println(r...)
	}
	// Output:
	// copied 2
	// 1 open
	// 2 close
}
