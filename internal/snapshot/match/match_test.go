package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
)

const (
	uuidA = "1f0a2b3c-4d5e-6f70-8192-a3b4c5d6e7f8"
	uuidB = "2f0a2b3c-4d5e-6f70-8192-a3b4c5d6e7f8"
)

func productKeys(p *domain.Product) Keys {
	return Keys{ID: p.ID, Name: p.Name, Barcode: p.Barcode}
}

func customerKeys(c *domain.Customer) Keys {
	return Keys{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

func product(id, name, barcode string) *domain.Product {
	return &domain.Product{Record: domain.Record{ID: id}, Name: name, Barcode: barcode}
}

func TestDetect_IDMatchTakesPrecedenceOverSemanticKey(t *testing.T) {
	// Incoming shares its id with one record and its name with another.
	// The id pass must win even though the name record sorts earlier.
	existing := []*domain.Product{
		product(uuidB, "Same Name", ""),
		product(uuidA, "Different Name", ""),
	}
	incoming := product(uuidA, "Same Name", "")

	d := NewDetector("Product", productKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Equal(t, MatchedByID, c.MatchedBy)
	assert.Same(t, existing[1], c.Existing)
	assert.Equal(t, `Product with UUID "`+uuidA+`" already exists`, c.Message)
}

func TestDetect_InvalidUUIDNeverMatchesByID(t *testing.T) {
	existing := []*domain.Product{product("u1", "Widget", "")}
	incoming := product("u1", "Other", "")

	d := NewDetector("Product", productKeys, existing)
	assert.Nil(t, d.Detect(incoming), "non-UUID ids must not participate in the id pass")
}

func TestDetect_ProductByName(t *testing.T) {
	existing := []*domain.Product{product(uuidA, "Coffee", "")}
	incoming := product("", "Coffee", "")

	d := NewDetector("Product", productKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Equal(t, MatchedBySemanticKey, c.MatchedBy)
	assert.Equal(t, KindDuplicate, c.Kind)
	assert.Equal(t, `Product "Coffee" already exists`, c.Message)
}

func TestDetect_ProductBarcodeMessagePreferred(t *testing.T) {
	existing := []*domain.Product{product(uuidA, "Coffee", "885001")}
	incoming := product("", "Coffee Refill", "885001")

	d := NewDetector("Product", productKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Equal(t, `Product with barcode "885001" already exists`, c.Message)
}

func TestDetect_FirstWinsAcrossKeys(t *testing.T) {
	// Name matches the earlier record, barcode the later one; the
	// earlier record is reported, but the shared key in the message is
	// the one the reported record actually collides on.
	existing := []*domain.Product{
		product(uuidA, "Coffee", ""),
		product(uuidB, "Beans", "885001"),
	}
	incoming := product("", "Coffee", "885001")

	d := NewDetector("Product", productKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Same(t, existing[0], c.Existing)
	assert.Equal(t, `Product "Coffee" already exists`, c.Message)
}

func TestDetect_DuplicateExistingRecordsFirstWins(t *testing.T) {
	existing := []*domain.Product{
		product(uuidA, "Coffee", ""),
		product(uuidB, "Coffee", ""),
	}
	incoming := product("", "Coffee", "")

	d := NewDetector("Product", productKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Same(t, existing[0], c.Existing)
}

func TestDetect_CustomerPhonePreferred(t *testing.T) {
	existing := []*domain.Customer{
		{Record: domain.Record{ID: uuidA}, Name: "Aye Aye", Phone: "09777111222"},
	}
	incoming := &domain.Customer{Name: "Daw Aye Aye", Phone: "09777111222"}

	d := NewDetector("Customer", customerKeys, existing)
	c := d.Detect(incoming)

	require.NotNil(t, c)
	assert.Equal(t, `Customer with phone "09777111222" already exists`, c.Message)
}

func TestDetect_TransactionalTypesNeverMatchSemantically(t *testing.T) {
	saleKeys := func(s *domain.Sale) Keys {
		return Keys{ID: s.ID, Name: s.CustomerName}
	}
	existing := []*domain.Sale{
		{Record: domain.Record{ID: uuidA}, CustomerName: "Aye Aye", TotalAmount: 500},
	}
	incoming := &domain.Sale{CustomerName: "Aye Aye", TotalAmount: 500}

	d := NewDetector("Sale", saleKeys, existing)
	assert.Nil(t, d.Detect(incoming))

	// The id pass still applies.
	withID := &domain.Sale{Record: domain.Record{ID: uuidA}}
	c := d.Detect(withID)
	require.NotNil(t, c)
	assert.Equal(t, MatchedByID, c.MatchedBy)
}

func TestDetect_UnknownTypeFallsBackToName(t *testing.T) {
	existing := []*domain.Category{{Record: domain.Record{ID: uuidA}, Name: "Drinks"}}
	keys := func(c *domain.Category) Keys { return Keys{ID: c.ID, Name: c.Name} }

	d := NewDetector("Category", keys, existing)
	c := d.Detect(&domain.Category{Name: "Drinks"})
	require.NotNil(t, c)
	assert.Equal(t, `Category "Drinks" already exists`, c.Message)
}

func TestDetect_DegenerateInputs(t *testing.T) {
	d := NewDetector("Product", productKeys, []*domain.Product{nil, product(uuidA, "Coffee", "")})

	assert.Nil(t, d.Detect(nil))
	assert.Nil(t, d.Detect(product("", "", "")))

	empty := NewDetector("", productKeys, []*domain.Product{product(uuidA, "Coffee", "")})
	assert.Nil(t, empty.Detect(product("", "Coffee", "")))

	none := NewDetector[domain.Product]("Product", productKeys, nil)
	assert.Nil(t, none.Detect(product("", "Coffee", "")))
}

func TestDetect_EmptyKeysNeverMatch(t *testing.T) {
	existing := []*domain.Product{product("", "", "")}
	d := NewDetector("Product", productKeys, existing)
	assert.Nil(t, d.Detect(product("", "", "")), "empty fields must not be treated as equal")
}
