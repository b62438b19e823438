package compare

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseXML(t *testing.T, s string) *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	require.NoError(t, doc.ReadFromString(s))
	return doc
}

const definitions = `<definitions xmlns="http://www.omg.org/spec/CMMN/20151109/MODEL" xmlns:cafienne="org.cafienne">` +
	`<case id="helloworld.case" name="HelloWorld">` +
	`<casePlanModel id="cm_1" name="HelloWorld"><humanTask id="t1" name="Receive Greeting" cafienne:performer="sender"/></casePlanModel>` +
	`<documentation><text><![CDATA[ Greets the world ]]></text></documentation>` +
	`</case></definitions>`

func TestSameXMLIdenticalDocuments(t *testing.T) {
	assert.True(t, SameXML(parseXML(t, definitions), parseXML(t, definitions)))
}

func TestSameXMLIgnoresAttributeOrderAndValuePadding(t *testing.T) {
	a := parseXML(t, `<case id="c1" name="Hello"/>`)
	b := parseXML(t, `<case name=" Hello " id="c1"/>`)

	assert.True(t, SameXML(a, b))
}

func TestSameXMLDifferentAttributeValue(t *testing.T) {
	a := parseXML(t, `<case id="c1" name="Hello"/>`)
	b := parseXML(t, `<case id="c1" name="World"/>`)

	assert.False(t, SameXML(a, b))
}

func TestSameXMLExtraAttribute(t *testing.T) {
	a := parseXML(t, `<case id="c1"/>`)
	b := parseXML(t, `<case id="c1" name="World"/>`)

	assert.False(t, SameXML(a, b))
	assert.False(t, SameXML(b, a))
}

func TestSameXMLComparesNamespaceAndLocalName(t *testing.T) {
	a := parseXML(t, `<m:case xmlns:m="urn:one"/>`)
	b := parseXML(t, `<n:case xmlns:n="urn:one"/>`)
	c := parseXML(t, `<m:case xmlns:m="urn:two"/>`)

	// same namespace and local name, but the declaring attribute has a different name
	assert.False(t, SameXML(a, b))
	assert.False(t, SameXML(a, c))
	assert.False(t, SameXML(parseXML(t, `<case/>`), parseXML(t, `<task/>`)))
}

func TestSameXMLExtraChildOnEitherSide(t *testing.T) {
	a := parseXML(t, `<case><task/></case>`)
	b := parseXML(t, `<case><task/><stage/></case>`)

	assert.False(t, SameXML(a, b))
	assert.False(t, SameXML(b, a))
}

func TestSameXMLTextIsTrimmed(t *testing.T) {
	a := parseXML(t, `<text>hello</text>`)
	b := parseXML(t, `<text>  hello
	</text>`)

	assert.True(t, SameXML(a, b))
}

func TestSameXMLDistinguishesCDataFromText(t *testing.T) {
	a := parseXML(t, `<text><![CDATA[hello]]></text>`)
	b := parseXML(t, `<text>hello</text>`)

	assert.False(t, SameXML(a, b))
	assert.True(t, SameXML(a, parseXML(t, `<text><![CDATA[ hello ]]></text>`)))
}

func TestSameXMLWhitespaceNodesCountAsChildren(t *testing.T) {
	compact := parseXML(t, `<case><task/></case>`)
	pretty := parseXML(t, "<case>\n  <task/>\n</case>")

	assert.False(t, SameXML(compact, pretty))
	assert.True(t, SameXMLIgnoringWhitespace(compact, pretty))
}

func TestSameXMLComments(t *testing.T) {
	a := parseXML(t, `<case><!-- note --></case>`)
	b := parseXML(t, `<case><!-- note --></case>`)

	assert.False(t, SameXML(a, b))
}

func TestSameXMLNilDocuments(t *testing.T) {
	assert.True(t, SameXML(nil, nil))
	assert.False(t, SameXML(parseXML(t, `<a/>`), nil))
	assert.True(t, SameXML(etree.NewDocument(), etree.NewDocument()))
}

func TestSameXMLEmptyDocumentAgainstRoot(t *testing.T) {
	empty := etree.NewDocument()
	doc := parseXML(t, `<a/>`)

	assert.False(t, SameXML(empty, doc))
	assert.False(t, SameXML(doc, empty))
	assert.True(t, SameXMLIgnoringWhitespace(doc, parseXML(t, `<?xml version="1.0"?>`+"\n<a/>")))
}
