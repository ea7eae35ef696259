package driver

import (
	"sort"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

// replicationKey is the update timestamp every incremental endpoint filters on
const replicationKey = "lastupdatets"

// StreamDef describes one endpoint of the api. WithLookup asks the api to
// inline lookup values (output=withlookup).
type StreamDef struct {
	Name           string
	Path           string
	PrimaryKey     []string
	ReplicationKey string
	WithLookup     bool
	Policy         PolicyName
	Fields         map[string]types.DataType
}

// Incremental reports whether the stream can be filtered on its replication key
func (s *StreamDef) Incremental() bool {
	return s.ReplicationKey != ""
}

func (s *StreamDef) syncModes() []types.SyncMode {
	if s.Incremental() {
		return []types.SyncMode{types.FULLREFRESH, types.INCREMENTAL}
	}
	return []types.SyncMode{types.FULLREFRESH}
}

// StreamNames lists the catalog in a stable order
func StreamNames() []string {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// variant fields change shape between records and are passed through as json
const (
	integer   = types.Int64
	number    = types.Float64
	text      = types.String
	boolean   = types.Bool
	timestamp = types.Timestamp
	object    = types.Object
	array     = types.Array
	variant   = types.Unknown
)

// Catalog holds every stream the connector can extract, keyed by stream name
var Catalog = map[string]*StreamDef{
	"orders": {
		Name:           "orders",
		Path:           "/orders",
		PrimaryKey:     []string{"orderid"},
		ReplicationKey: replicationKey,
		WithLookup:     true,
		Policy:         TotalCountPolicy,
		Fields: map[string]types.DataType{
			"orderid":                   integer,
			"amountpaid":                number,
			"calculate_ordercosts":      boolean,
			"code":                      text,
			"customerid":                integer,
			"deferredpaymentproperties": object,
			"deliveryaddress":           object,
			"deliveryscenarioid":        integer,
			"deliverystatus":            integer,
			"expiryhandled":             boolean,
			"expiryts":                  timestamp,
			"firstname":                 text,
			"hasopenpaymentrequest":     boolean,
			"isauthenticatedcustomer":   boolean,
			"lastname":                  text,
			"lookup":                    object,
			"nbroftickets":              integer,
			"ordercosts":                array,
			"payments":                  array,
			"paymentscenarioid":         integer,
			"paymentstatus":             integer,
			"products":                  array,
			"promocodes":                array,
			"queuetokens":               array,
			"rappelhandled":             boolean,
			"rappelts":                  timestamp,
			"saleschannelid":            integer,
			"status":                    integer,
			"tickets":                   array,
			"totalamount":               number,
			"webskinid":                 integer,
			"createdts":                 timestamp,
			"lastupdatets":              timestamp,
			"c_remark":                  text,
			"c_podiumpascode":           text,
			"c_donatie":                 text,
		},
	},
	"events": {
		Name:           "events",
		Path:           "/events",
		PrimaryKey:     []string{"id"},
		ReplicationKey: replicationKey,
		WithLookup:     true,
		Policy:         TotalCountPolicy,
		// contingents carry null entries inside numeric lists and price conditions
		// hold an integer, a list or a start/end range
		Fields: map[string]types.DataType{
			"c_ticketlayoutvariant":          text,
			"c_genre":                        text,
			"c_season":                       text,
			"c_hasupsells":                   text,
			"c_isupsellfor":                  text,
			"c_ypname":                       text,
			"c_ypid":                         text,
			"c_ypstartts":                    text,
			"c_ypendts":                      text,
			"c_yplocationid":                 text,
			"c_yplocationname":               text,
			"c_ypupdatets":                   text,
			"c_ticketfee":                    text,
			"c_oldid":                        text,
			"c_ypaltid":                      text,
			"c_extratickettext":              text,
			"c_noordercosts":                 text,
			"c_pkiid":                        text,
			"c_grootboekrekening":            text,
			"c_vismanetcode":                 text,
			"c_apponly":                      text,
			"c_sendtofriend":                 text,
			"c_codedisplaybeforestart":       text,
			"c_btwcode":                      text,
			"c_status":                       integer,
			"c_retouroptions":                text,
			"c_nohardtickets":                text,
			"id":                             integer,
			"name":                           text,
			"audiopreviewurl":                text,
			"availability":                   array,
			"code":                           text,
			"contingents":                    variant,
			"currentstatus":                  integer,
			"description":                    text,
			"endts":                          text,
			"externalcode":                   text,
			"image":                          text,
			"info":                           text,
			"layout":                         object,
			"locationid":                     integer,
			"locationname":                   text,
			"maxnbrofticketsperbasket":       integer,
			"optinsetid":                     integer,
			"previews":                       array,
			"prices":                         variant,
			"productionid":                   integer,
			"publishedts":                    timestamp,
			"queuetoken":                     integer,
			"revenuesplitid":                 integer,
			"saleendts":                      timestamp,
			"saleschannels":                  array,
			"salestartts":                    timestamp,
			"salestatusmessagesid":           integer,
			"schedule":                       text,
			"seatallowsingle":                boolean,
			"seated_chartkey":                text,
			"seated_contingents":             array,
			"seatingplancontingents":         array,
			"seatingplaneventspecificprices": object,
			"seatingplanid":                  integer,
			"seatingplanpricelistid":         integer,
			"seatselection":                  boolean,
			"segmentationtags":               array,
			"servicemailids":                 array,
			"shortdescription":               text,
			"socialdistance":                 integer,
			"startts":                        timestamp,
			"subtitle":                       text,
			"subtitle2":                      text,
			"tags":                           array,
			"ticketfeeid":                    integer,
			"ticketinfoid":                   integer,
			"ticketlayoutid":                 integer,
			"totalmaxtickets":                integer,
			"translations":                   object,
			"upsellid":                       integer,
			"waitinglisttype":                integer,
			"webremark":                      text,
			"createdts":                      timestamp,
			"lastupdatets":                   timestamp,
		},
	},
	"price_types": {
		Name:       "price_types",
		Path:       "/settings/pricing/pricetypes",
		PrimaryKey: []string{"id"},
		WithLookup: true,
		Policy:     TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":           integer,
			"typeid":       integer,
			"name":         text,
			"remark":       text,
			"isarchived":   boolean,
			"createdts":    timestamp,
			"lastupdatets": timestamp,
		},
	},
	"seat_ranks": {
		Name:       "seat_ranks",
		Path:       "/settings/seatingplans/seatranks",
		PrimaryKey: []string{"id"},
		WithLookup: true,
		Policy:     TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":           integer,
			"name":         text,
			"color":        text,
			"isarchived":   boolean,
			"createdts":    timestamp,
			"lastupdatets": timestamp,
		},
	},
	"contacts": {
		Name:           "contacts",
		Path:           "/contacts",
		PrimaryKey:     []string{"id"},
		ReplicationKey: replicationKey,
		WithLookup:     true,
		Policy:         TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":                 integer,
			"firstname":          text,
			"middlename":         text,
			"lastname":           text,
			"sex":                text,
			"birthdate":          text,
			"company":            text,
			"organizationfields": object,
			"customertitleid":    integer,
			"languagecode":       text,
			"addresses":          array,
			"emails":             array,
			"phonenumbers":       array,
			"relationtypeids":    array,
			"optins":             array,
			"lookup":             object,
			"isarchived":         boolean,
			"createdts":          timestamp,
			"lastupdatets":       timestamp,
		},
	},
	"locations": {
		Name:       "locations",
		Path:       "/settings/events/eventlocations",
		PrimaryKey: []string{"id"},
		Policy:     TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":           integer,
			"name":         text,
			"street1":      text,
			"street2":      text,
			"street3":      text,
			"street4":      text,
			"zip":          text,
			"city":         text,
			"countrycode":  text,
			"isarchived":   boolean,
			"createdts":    timestamp,
			"lastupdatets": timestamp,
		},
	},
	"products": {
		Name:       "products",
		Path:       "/products",
		PrimaryKey: []string{"id"},
		Policy:     TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":             integer,
			"name":           text,
			"code":           text,
			"typeid":         integer,
			"categoryid":     integer,
			"description":    text,
			"instancevalues": object,
			"properties":     array,
			"layoutid":       integer,
			"saleschannels":  array,
			"salestartts":    timestamp,
			"saleendts":      timestamp,
			"isarchived":     boolean,
			"createdts":      timestamp,
			"lastupdatets":   timestamp,
		},
	},
	"sales_channels": {
		Name:       "sales_channels",
		Path:       "/settings/ticketsales/saleschannels",
		PrimaryKey: []string{"id"},
		Policy:     TotalCountPolicy,
		Fields: map[string]types.DataType{
			"id":           integer,
			"name":         text,
			"typeid":       integer,
			"qenabled":     boolean,
			"isarchived":   boolean,
			"createdts":    timestamp,
			"lastupdatets": timestamp,
		},
	},
}
