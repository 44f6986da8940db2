package savio_test

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/arloliu/savio"
	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/session"
	"github.com/arloliu/savio/table"
)

// ExampleWrite writes a table with labels and reads one column back.
func ExampleWrite() {
	dir, err := os.MkdirTemp("", "savio-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	tbl, err := table.New(
		table.FloatColumn("age", 25, math.NaN(), 40),
		table.StringColumn("name", "Ann", "Bob", "Cleo"),
	)
	if err != nil {
		log.Fatal(err)
	}

	md := &dictionary.Metadata{
		VarTypes:  map[string]int{"name": 10},
		VarLabels: map[string]string{"age": "Age in years"},
	}

	path := filepath.Join(dir, "people.sav")
	if err := savio.Write(path, tbl, md); err != nil {
		log.Fatal(err)
	}

	got, gotMD, err := savio.Read(path, savio.WithColumns(session.Names{"age"}))
	if err != nil {
		log.Fatal(err)
	}

	age, _ := got.Column("age")
	fmt.Println(gotMD.VarNames, gotMD.VarLabels["age"])
	for _, v := range age.Values {
		fmt.Println(v.IsNull(), v.Num)
	}

	// Output:
	// [age] Age in years
	// false 25
	// true 0
	// false 40
}
