package family_test

import (
	"os"

	"github.com/matzehuels/kintree/pkg/family"
)

func ExampleWritePeople() {
	people := []family.Person{
		{ID: 1, Name: "Ana", BirthDate: family.Opt("1950"), Children: []int{2}},
		{ID: 2, Name: "Bea", Parents: []int{1}, Position: &family.Position{X: 0, Y: 200}},
	}
	_ = family.WritePeople(people, os.Stdout)
	// Output:
	// [
	//   {
	//     "id": 1,
	//     "name": "Ana",
	//     "birthDate": "1950",
	//     "parents": [],
	//     "children": [
	//       2
	//     ]
	//   },
	//   {
	//     "id": 2,
	//     "name": "Bea",
	//     "parents": [
	//       1
	//     ],
	//     "children": [],
	//     "x": 0,
	//     "y": 200
	//   }
	// ]
}
