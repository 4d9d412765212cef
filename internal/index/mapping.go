package index

// mappingJSON is the fixed schema (spec.md §6.1) installed at index
// creation. Kept as a literal rather than built from model structs so the
// wire mapping stays stable even if Go field names are refactored.
const mappingJSON = `{
  "mappings": {
    "properties": {
      "filename": {"type": "keyword"},
      "extension": {"type": "keyword"},
      "path_parent": {"type": "keyword"},
      "filesize": {"type": "long"},
      "items": {"type": "long"},
      "items_files": {"type": "long"},
      "items_subdirs": {"type": "long"},
      "owner": {"type": "keyword"},
      "group": {"type": "keyword"},
      "last_modified": {"type": "date"},
      "last_access": {"type": "date"},
      "last_change": {"type": "date"},
      "hardlinks": {"type": "integer"},
      "inode": {"type": "keyword"},
      "filehash": {"type": "keyword"},
      "tag": {"type": "keyword"},
      "tag_custom": {"type": "keyword"},
      "dupe_md5": {"type": "keyword"},
      "crawl_time": {"type": "float"},
      "change_percent_filesize": {"type": "float"},
      "change_percent_items": {"type": "float"},
      "change_percent_items_files": {"type": "float"},
      "change_percent_items_subdirs": {"type": "float"},
      "worker_name": {"type": "keyword"},
      "indexing_date": {"type": "date"},
      "path": {"type": "keyword"},
      "total": {"type": "long"},
      "used": {"type": "long"},
      "free": {"type": "long"},
      "available": {"type": "long"},
      "state": {"type": "keyword"},
      "dir_count": {"type": "long"},
      "file_count": {"type": "long"},
      "bulk_time": {"type": "float"}
    }
  }
}`

// ExtendMapping is the single plugin hook the source system's plugin
// architecture is reduced to (Design Notes §9): a function from the base
// mapping to an extended one. The identity extension is the default.
type ExtendMapping func(mapping map[string]any) map[string]any
