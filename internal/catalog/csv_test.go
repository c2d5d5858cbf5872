package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/pkg/models"
)

func TestCSVRoundTrip(t *testing.T) {
	in := []models.Product{
		{ID: 1, Name: "Mug", Type: "Kitchen", Price: 8.99, Description: "Holds, \"coffee\"", Image: "mug.png"},
		{ID: 2, Name: "Lamp", Type: "Decor", Price: 30, Description: "", Image: ""},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "id,name,type,price,description,image\n"))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadCSVHeaderOrderAndSkips(t *testing.T) {
	src := "Image,Name,ID\nmug.png,Mug,1\n,NoID,\nlamp.png,,3\n"

	out, err := ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.Product{ID: 1, Name: "Mug", Image: "mug.png"}, out[0])
}

func TestReadCSVBadValues(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,name\nx,Mug\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("id,name,price\n1,Mug,cheap\n"))
	assert.Error(t, err)
}
