// Package itis queries the Integrated Taxonomic Information System Solr
// service and describes its delimiter-packed documents.
package itis
