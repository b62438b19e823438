package casetests

import (
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

const caseFileDefinition = "casefile.xml"

type rootItem struct {
	RootProperty1 string      `json:"RootProperty1,omitempty"`
	RootProperty2 *bool       `json:"RootProperty2,omitempty"`
	ChildItem     *childItem  `json:"ChildItem,omitempty"`
	ChildArray    []childItem `json:"ChildArray,omitempty"`
}

type childItem struct {
	ChildName       string           `json:"ChildName"`
	ChildAge        int              `json:"ChildAge"`
	GrandChildItem  *grandChildItem  `json:"GrandChildItem,omitempty"`
	GrandChildArray []grandChildItem `json:"GrandChildArray,omitempty"`
}

type grandChildItem struct {
	GrandChildName      string `json:"GrandChildName"`
	GrandChildBirthDate string `json:"GrandChildBirthDate"`
}

func newChild(name string, age int) childItem {
	return childItem{ChildName: name, ChildAge: age}
}

func newGrandChild(name string) grandChildItem {
	return grandChildItem{GrandChildName: name, GrandChildBirthDate: "2001-10-26"}
}

func newFamily() childItem {
	child := newChild("name", 20)
	grandChild := newGrandChild("name")
	child.GrandChildItem = &grandChild
	child.GrandChildArray = []grandChildItem{newGrandChild("name"), newGrandChild("name")}
	return child
}

func DoCaseFileTests(t *T) {
	w := t.NewWorld("casefile_tenant_")
	t.Deploy(w, caseFileDefinition)
	user := w.Sender

	startEmptyCase := func(t *T) string {
		id, err := t.Services().Cases.StartCase(t.Context(), user,
			servicedef.StartCase{Definition: caseFileDefinition, Tenant: w.Name, Debug: t.CaseDebug()})
		require.NoError(t, err)
		return id
	}

	t.Run("empty case file", func(t *T) {
		caseID := startEmptyCase(t)
		files := t.Services().CaseFile
		require.NoError(t, files.CreateCaseFile(t.Context(), user, caseID, map[string]interface{}{}))
		t.AssertCaseFileContent(user, caseID, "", map[string]interface{}{})

		require.NoError(t, files.CreateCaseFile(t.Context(), user, caseID, map[string]interface{}{
			"RootCaseFileItem":  map[string]interface{}{},
			"RootCaseFileArray": []interface{}{map[string]interface{}{}},
		}))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", map[string]interface{}{})
		t.AssertCaseFileContent(user, caseID, "RootCaseFileArray", []interface{}{map[string]interface{}{}})
	})

	t.Run("empty root array gets one element", func(t *T) {
		caseID := startEmptyCase(t)
		require.NoError(t, t.Services().CaseFile.CreateCaseFileItem(t.Context(), user, caseID, "RootCaseFileArray", map[string]interface{}{}))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileArray", []interface{}{map[string]interface{}{}})
	})

	t.Run("invalid paths are rejected", func(t *T) {
		caseID := startEmptyCase(t)
		item := rootItem{RootProperty1: "string", RootProperty2: cmmn.Bool(true)}
		for _, path := range []string{
			"RootCasee",
			"RootCaseFile[",
			"RootCaseFile[/",
			"//RootCaseFile",
			"/RootCaseFile//",
			"RootCaseFile",
		} {
			require.NoError(t, t.Services().CaseFile.CreateCaseFileItem(t.Context(), user, caseID, path, item, client.ExpectStatus(400)),
				"creating item at %q", path)
		}
	})

	t.Run("create, update, replace and delete items", func(t *T) {
		caseID := startEmptyCase(t)
		files := t.Services().CaseFile
		family := newFamily()
		item := rootItem{
			RootProperty1: "string",
			RootProperty2: cmmn.Bool(true),
			ChildItem:     &family,
			ChildArray:    []childItem{newChild("name", 20), newChild("name", 20)},
		}

		require.NoError(t, files.CreateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", item))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", item)

		require.NoError(t, files.CreateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", item, client.ExpectStatus(400)),
			"creating the same item twice")

		item.RootProperty2 = cmmn.Bool(false)
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", item))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem/RootProperty2", false)

		newFirstChild := newChild("diff", 40)
		for _, path := range []string{"RootCaseFileItem/ChildArray[3]", "RootCaseFileItem/ChildArray[2]", "RootCaseFileItem/ChildArray[1]"} {
			require.NoError(t, files.CreateCaseFileItem(t.Context(), user, caseID, path, newFirstChild, client.ExpectStatus(400)),
				"creating item at %q", path)
		}
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildItem[1]", newFirstChild, client.ExpectStatus(400)))
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildArray[1]", newFirstChild))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem/ChildArray[1]", newFirstChild)
		item.ChildArray[1] = newFirstChild

		item.ChildArray = append(item.ChildArray, newFamily())
		require.NoError(t, files.ReplaceCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", item))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", item)
		t.AssertCaseFileQuery(user, caseID, "$.RootCaseFileItem.ChildArray[*].ChildName", "name", "diff", "name")

		invalidType := map[string]interface{}{"RootProperty2": "string instead of boolean"}
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", invalidType, client.ExpectStatus(400)))
		require.NoError(t, files.ReplaceCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", invalidType, client.ExpectStatus(400)))

		shallow := rootItem{RootProperty1: "second string"}
		item.RootProperty1 = shallow.RootProperty1
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", shallow))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", item)

		require.NoError(t, files.ReplaceCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", shallow))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", shallow)

		require.NoError(t, files.ReplaceCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem", item))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem", item)

		childUpdate := newChild("name", 26)
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildItem", childUpdate))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem/ChildItem/ChildAge", 26)

		grandChildren := []grandChildItem{newGrandChild("name"), newGrandChild("My favorite kid"), newGrandChild("Just one more")}
		require.NoError(t, files.UpdateCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildItem/GrandChildArray", grandChildren))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem/ChildItem/GrandChildArray", grandChildren)

		require.NoError(t, files.DeleteCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildItem"))
		require.NoError(t, files.DeleteCaseFileItem(t.Context(), user, caseID, "RootCaseFileItem/ChildItem", client.ExpectStatus(400)))
	})

	t.Run("delete case file", func(t *T) {
		caseID := startEmptyCase(t)
		files := t.Services().CaseFile
		require.NoError(t, files.CreateCaseFile(t.Context(), user, caseID, map[string]interface{}{
			"RootCaseFileItem": rootItem{RootProperty1: "string"},
		}))
		t.AssertCaseFileContent(user, caseID, "RootCaseFileItem/RootProperty1", "string")
		require.NoError(t, files.DeleteCaseFile(t.Context(), user, caseID))
		t.AssertCaseFileAbsent(user, caseID, "RootCaseFileItem")
	})
}
