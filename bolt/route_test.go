package bolt

import (
	"testing"

	"github.com/arloliu/rudder/types"
	"github.com/stretchr/testify/require"
)

func TestRouteEncode(t *testing.T) {
	route := NewRoute(
		map[string]string{"address": "localhost:7687"},
		[]string{"bookmark"},
		"neo4j",
	)

	expected := []byte{
		0xB3, 0x66, // struct, 3 fields, ROUTE
		0xA1,                                                                                               // map, 1 entry
		0x87, 'a', 'd', 'd', 'r', 'e', 's', 's',                                                            // "address"
		0x8E, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't', ':', '7', '6', '8', '7',                         // "localhost:7687"
		0x91,                                         // list, 1 entry
		0x88, 'b', 'o', 'o', 'k', 'm', 'a', 'r', 'k', // "bookmark"
		0x85, 'n', 'e', 'o', '4', 'j', // "neo4j"
	}

	require.Equal(t, expected, route.Encode())
}

func TestRouteEncodeEmpty(t *testing.T) {
	route := NewRoute(nil, nil, "")

	expected := []byte{
		0xB3, 0x66,
		0xA0, // empty map
		0x90, // empty list
		0x80, // empty string: server default database
	}

	require.Equal(t, expected, route.Encode())
}

func TestRouteEncodeSortedContextKeys(t *testing.T) {
	route := NewRoute(
		map[string]string{"b": "2", "a": "1"},
		nil,
		"",
	)

	expected := []byte{
		0xB3, 0x66,
		0xA2,
		0x81, 'a', 0x81, '1',
		0x81, 'b', 0x81, '2',
		0x90,
		0x80,
	}

	require.Equal(t, expected, route.Encode())
}

// buildResponse encodes a canonical route response payload so the parse
// tests exercise real packstream bytes.
func buildResponse(ttl int64, db string, withDB bool, servers []types.Server) []byte {
	var e encoder

	e.writeMapHeader(1)
	e.writeString("rt")

	fields := 2
	if withDB {
		fields = 3
	}
	e.writeMapHeader(fields)
	e.writeString("ttl")
	e.writeInt(ttl)
	if withDB {
		e.writeString("db")
		e.writeString(db)
	}
	e.writeString("servers")
	e.writeListHeader(len(servers))
	for _, s := range servers {
		e.writeMapHeader(2)
		e.writeString("addresses")
		e.writeListHeader(len(s.Addresses))
		for _, a := range s.Addresses {
			e.writeString(a)
		}
		e.writeString("role")
		e.writeString(string(s.Role))
	}

	return e.bytes()
}

func TestParseRouteResponse(t *testing.T) {
	data := buildResponse(1000, "neo4j", true, []types.Server{
		{Addresses: []string{"localhost:7687"}, Role: types.RoleRoute},
	})

	table, err := ParseRouteResponse(data)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), table.TTL)
	require.Equal(t, types.Database("neo4j"), table.DB)
	require.Len(t, table.Servers, 1)
	require.Equal(t, "localhost:7687", table.Servers[0].Addr())
	require.Equal(t, types.RoleRoute, table.Servers[0].Role)
}

func TestParseRouteResponseMissingDB(t *testing.T) {
	data := buildResponse(300, "", false, []types.Server{
		{Addresses: []string{"host1:7687"}, Role: types.RoleRead},
		{Addresses: []string{"host2:7687"}, Role: types.RoleWrite},
	})

	table, err := ParseRouteResponse(data)
	require.NoError(t, err)
	require.True(t, table.DB.IsDefault())
	require.Len(t, table.Servers, 2)
}

func TestParseRouteResponseLargeTTL(t *testing.T) {
	// ttl above the tiny-int range exercises the multi-byte integer path.
	data := buildResponse(86400, "neo4j", true, nil)

	table, err := ParseRouteResponse(data)
	require.NoError(t, err)
	require.Equal(t, uint64(86400), table.TTL)
}

func TestParseRouteResponseMalformed(t *testing.T) {
	t.Run("not a map", func(t *testing.T) {
		var e encoder
		e.writeString("nope")
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing rt key", func(t *testing.T) {
		var e encoder
		e.writeMapHeader(1)
		e.writeString("other")
		e.writeInt(1)
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing ttl", func(t *testing.T) {
		var e encoder
		e.writeMapHeader(1)
		e.writeString("rt")
		e.writeMapHeader(1)
		e.writeString("servers")
		e.writeListHeader(0)
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("ttl not an integer", func(t *testing.T) {
		var e encoder
		e.writeMapHeader(1)
		e.writeString("rt")
		e.writeMapHeader(2)
		e.writeString("ttl")
		e.writeString("soon")
		e.writeString("servers")
		e.writeListHeader(0)
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("servers not a list", func(t *testing.T) {
		var e encoder
		e.writeMapHeader(1)
		e.writeString("rt")
		e.writeMapHeader(2)
		e.writeString("ttl")
		e.writeInt(300)
		e.writeString("servers")
		e.writeString("none")
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("server entry missing role", func(t *testing.T) {
		var e encoder
		e.writeMapHeader(1)
		e.writeString("rt")
		e.writeMapHeader(2)
		e.writeString("ttl")
		e.writeInt(300)
		e.writeString("servers")
		e.writeListHeader(1)
		e.writeMapHeader(1)
		e.writeString("addresses")
		e.writeListHeader(0)
		_, err := ParseRouteResponse(e.bytes())
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("truncated payload", func(t *testing.T) {
		data := buildResponse(1000, "neo4j", true, []types.Server{
			{Addresses: []string{"localhost:7687"}, Role: types.RoleRoute},
		})
		_, err := ParseRouteResponse(data[:len(data)-3])
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestPackstreamRoundTripSizes(t *testing.T) {
	// A bookmark list long enough to push the list and string encodings
	// past their tiny forms.
	long := make([]string, 20)
	for i := range long {
		long[i] = "bookmark-with-a-name-longer-than-fifteen-bytes"
	}
	route := NewRoute(nil, long, "neo4j")

	d := newDecoder(route.Encode())
	value, err := d.decodeValue()
	require.NoError(t, err)

	s, ok := value.(structValue)
	require.True(t, ok)
	require.Equal(t, RouteSignature, s.tag)
	require.Len(t, s.fields, 3)

	bookmarks, ok := s.fields[1].([]any)
	require.True(t, ok)
	require.Len(t, bookmarks, 20)
	require.Equal(t, "bookmark-with-a-name-longer-than-fifteen-bytes", bookmarks[0])
	require.Equal(t, "neo4j", s.fields[2])
}
